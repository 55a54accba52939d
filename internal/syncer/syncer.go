// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	conf "github.com/bartek5186/wooexport/internal/config"
	"github.com/bartek5186/wooexport/internal/job"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Status do komendy "status" w shellu.
type Status struct {
	Running  bool
	Ticks    uint64
	Targets  int
	LastRun  time.Time
	LastErr  string
	Interval time.Duration
}

// Syncer cyklicznie eksportuje sklepy z cfg.Watch.
type Syncer struct {
	log     zerolog.Logger // logowanie
	db      *gorm.DB       // historia jobów (może być nil)
	mu      sync.Mutex     // ochrona sekcji krytycznych
	cfg     *conf.Config   // aktualna konfiguracja
	running bool           // czy syncer działa
	cancel  context.CancelFunc
	wg      sync.WaitGroup // śledzi goroutines
	ticks   uint64         // licznik przebiegów
	lastRun time.Time
	lastErr error
}

func New(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB) *Syncer {
	return &Syncer{log: log, cfg: cfg, db: gdb}
}

func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.cfg == nil || len(s.cfg.Watch) == 0 {
		s.mu.Unlock()
		s.log.Warn().Msg("Watch: brak celów (sprawdź config.json)")
		return conf.ErrNoWatchTargets
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.ticks = 0
	s.wg.Add(1)
	targets := len(s.cfg.Watch)
	s.mu.Unlock()

	s.log.Info().Int("targets", targets).Msg("Syncer: start")
	go s.loop(ctx)
	return nil
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("Syncer: stop")
}

func (s *Syncer) UpdateConfig(cfg *conf.Config) {
	s.mu.Lock()
	s.cfg = cfg
	isRunning := s.running
	s.mu.Unlock()

	s.log.Info().Msg("Syncer: config zaktualizowany")

	if isRunning {
		// restart, żeby pętla wzięła nowe cele i interwał
		s.log.Info().Msg("Syncer: restart po zmianie configu")
		s.Stop()
		if err := s.Start(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Syncer: restart nieudany")
		}
	}
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:  s.running,
		Ticks:    s.ticks,
		LastRun:  s.lastRun,
		Interval: s.intervalLocked(),
	}
	if s.cfg != nil {
		st.Targets = len(s.cfg.Watch)
	}
	if s.lastErr != nil {
		st.LastErr = s.lastErr.Error()
	}
	return st
}

func (s *Syncer) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervalLocked()
}

func (s *Syncer) intervalLocked() time.Duration {
	if s.cfg != nil && s.cfg.SyncIntervalSeconds > 0 {
		return time.Duration(s.cfg.SyncIntervalSeconds) * time.Second
	}
	return time.Hour
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// pierwszy przebieg od razu
	s.tickOnce(ctx)

	current := s.interval()
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Syncer: koniec pętli")
			return
		case <-ticker.C:
			s.tickOnce(ctx)
			if next := s.interval(); next != current {
				current = next
				ticker.Reset(current)
			}
		}
	}
}

// tickOnce eksportuje po kolei wszystkie cele; błąd jednego nie zatrzymuje reszty.
func (s *Syncer) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.ticks++
	n := s.ticks
	cfg := s.cfg
	s.mu.Unlock()

	var errs []error
	for _, target := range cfg.Watch {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.runTarget(ctx, cfg, target); err != nil {
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = errors.Join(errs...)
	s.mu.Unlock()
	s.log.Info().Uint64("tick", n).Int("failed", len(errs)).Msg("Syncer: przebieg zakończony")
}

// RunOnce eksportuje jeden sklep z bieżącą konfiguracją (shell: run <url>).
func (s *Syncer) RunOnce(ctx context.Context, url string) (job.Result, error) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return s.runTarget(ctx, cfg, conf.WatchTarget{URL: url})
}

func (s *Syncer) runTarget(ctx context.Context, cfg *conf.Config, target conf.WatchTarget) (job.Result, error) {
	maxProducts := target.MaxProducts
	if maxProducts == 0 {
		maxProducts = cfg.MaxProducts
	}
	outputDir := target.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	runner := job.NewRunner(s.log, s.db, nil, cfg.Source, cfg.SourceConfig())
	res, err := runner.Run(ctx, job.Payload{
		URL:         target.URL,
		MaxProducts: job.ClampMaxProducts(maxProducts),
		OutputDir:   job.ResolveOutputDir(outputDir),
	})
	if err != nil {
		s.log.Error().Err(err).Str("url", target.URL).Msg("eksport nieudany")
		return res, err
	}
	s.log.Info().
		Str("url", target.URL).
		Str("output", res.OutputDir).
		Int("products", res.Summary.ProductsDiscovered).
		Int("unmatched", res.Summary.UnmatchedSelections).
		Msg("eksport OK")
	return res, nil
}
