package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	conf "github.com/bartek5186/wooexport/internal/config"
	"github.com/bartek5186/wooexport/internal/db"
	"github.com/bartek5186/wooexport/internal/job"
	logs "github.com/bartek5186/wooexport/internal/logs"
	"github.com/bartek5186/wooexport/internal/protocol"
	syncer "github.com/bartek5186/wooexport/internal/syncer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// wersję można nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

// errReported: błąd już wysłany (np. zdarzeniem protokołu), tylko kod wyjścia.
var errReported = errors.New("reported")

var cfgFile string

type app struct {
	dir     string
	cfgPath string
	cfg     *conf.Config
	log     zerolog.Logger
	dbh     *db.Handle // nil, gdy baza niedostępna
}

func main() {
	root := &cobra.Command{
		Use:           "wooexport",
		Short:         "WooCommerce catalog export (metadata.json + import CSV)",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/wooexport/config.json)")

	root.AddCommand(jobCommand(), exportCommand(), watchCommand(), shellCommand())

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// bootstrap: katalog aplikacji, .env, config, logi, baza.
func bootstrap(console io.Writer) (*app, error) {
	a := &app{dir: mustAppDataDir("wooexport")}
	a.cfgPath = cfgFile
	if a.cfgPath == "" {
		a.cfgPath = filepath.Join(a.dir, "config.json")
	}

	if err := conf.LoadEnv(".env", filepath.Join(a.dir, ".env")); err != nil {
		return nil, err
	}
	cfg, firstRun, err := conf.LoadOrCreate(a.cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	a.cfg = cfg

	a.log = logs.New(filepath.Join(a.dir, "app.log"), console)
	logs.SetLevel(cfg.LogLevel)
	if firstRun {
		a.log.Info().Msgf("Utworzono domyślną konfigurację: %s", a.cfgPath)
	}

	dbh, err := db.Open(cfg.DB.Driver, cfg.DB.DSN, a.dir)
	if err == nil {
		err = dbh.Migrate()
	}
	if err != nil {
		// eksport działa bez historii
		a.log.Error().Err(err).Str("driver", cfg.DB.Driver).Msg("DB unavailable, job history disabled")
		return a, nil
	}
	a.dbh = dbh
	a.log.Info().Str("db", dbh.Path).Str("driver", dbh.Driver).Msg("DB ready")
	return a, nil
}

func (a *app) close() {
	if a.dbh != nil {
		_ = a.dbh.Close()
	}
}

func (a *app) gormDB() *gorm.DB {
	if a.dbh == nil {
		return nil
	}
	return a.dbh.DB
}

func (a *app) newSyncer() *syncer.Syncer {
	return syncer.New(a.log, a.cfg, a.gormDB())
}

func (a *app) runner(emit *protocol.Emitter) *job.Runner {
	return job.NewRunner(a.log, a.gormDB(), emit, a.cfg.Source, a.cfg.SourceConfig())
}

// job: payload JSON na stdin, zdarzenia protokołu na stdout.
func jobCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "job",
		Short: "Run one export from a JSON payload on stdin, emitting JSON-line events on stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emit := protocol.NewEmitter(cmd.OutOrStdout())

			a, err := bootstrap(os.Stderr)
			if err != nil {
				emit.Error(err)
				return errReported
			}
			defer a.close()
			// zdarzenia "log" wymagają co najmniej poziomu info
			if zerolog.GlobalLevel() > zerolog.InfoLevel {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			payload, err := job.ParsePayload(cmd.InOrStdin())
			if err != nil {
				emit.Error(err)
				return errReported
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			res, err := a.runner(emit).Run(ctx, payload)
			if err != nil {
				a.log.Error().Err(err).Str("url", payload.URL).Msg("job failed")
				emit.Error(err)
				return errReported
			}
			emit.Result(res)
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	var (
		url         string
		maxProducts int
		outputDir   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a store and print the result summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("max-products") {
				maxProducts = a.cfg.MaxProducts
			}
			if outputDir == "" {
				outputDir = a.cfg.OutputDir
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			res, err := a.runner(nil).Run(ctx, job.Payload{
				URL:         url,
				MaxProducts: job.ClampMaxProducts(maxProducts),
				OutputDir:   job.ResolveOutputDir(outputDir),
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "store URL (http:// or https://)")
	cmd.Flags().IntVar(&maxProducts, "max-products", 0, "product limit, 0 = all (max 10000)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default ~/Downloads/woo-exports)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Periodically export the stores listed under \"watch\" in config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(os.Stdout)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			s := a.newSyncer()
			if err := s.Start(ctx); err != nil {
				return err
			}
			a.log.Info().Msgf("WooExport %s: watch działa", ver)
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}
