// internal/job/runner.go
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/bartek5186/wooexport/internal/db"
	"github.com/bartek5186/wooexport/internal/export"
	"github.com/bartek5186/wooexport/internal/integrations"
	"github.com/bartek5186/wooexport/internal/integrations/woocommerce"
	"github.com/bartek5186/wooexport/internal/media"
	"github.com/bartek5186/wooexport/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	MetadataFile = "metadata.json"
	ImportFile   = "woocommerce-import.csv"
)

type Files struct {
	MetadataJSON string `json:"metadataJson"`
	ImportCSV    string `json:"importCsv"`
}

type Summary struct {
	ProductsDiscovered   int  `json:"productsDiscovered"`
	ProductsProcessed    int  `json:"productsProcessed"`
	VariableProducts     int  `json:"variableProducts"`
	VariationsDiscovered int  `json:"variationsDiscovered"`
	ImagesDownloaded     int  `json:"imagesDownloaded"`
	ImagesSkipped        int  `json:"imagesSkipped"`
	CSVGenerated         bool `json:"csvGenerated"`
	UnmatchedSelections  int  `json:"unmatchedSelections"`
}

type Result struct {
	JobID     string  `json:"jobId"`
	Source    string  `json:"source"`
	OutputDir string  `json:"outputDir"`
	Files     Files   `json:"files"`
	Summary   Summary `json:"summary"`
}

// Runner wykonuje eksport: pobranie, normalizacja, obrazki, CSV.
type Runner struct {
	log       zerolog.Logger
	db        *gorm.DB          // nil = bez zapisu historii
	emit      *protocol.Emitter // nil = bez zdarzeń protokołu
	source    string            // nazwa w rejestrze integracji
	sourceCfg json.RawMessage
}

func NewRunner(log zerolog.Logger, gdb *gorm.DB, emit *protocol.Emitter, source string, sourceCfg json.RawMessage) *Runner {
	if source == "" {
		source = woocommerce.Name
	}
	return &Runner{log: log, db: gdb, emit: emit, source: source, sourceCfg: sourceCfg}
}

// run trzyma stan jednego wykonania.
type run struct {
	*Runner
	log      zerolog.Logger
	jobID    string
	progress protocol.Progress
	summary  Summary
}

func (r *run) report(stage protocol.Stage) {
	r.progress.Stage = stage
	if r.emit != nil {
		r.emit.Progress(r.progress)
	}
}

func (r *Runner) Run(ctx context.Context, p Payload) (res Result, err error) {
	if p.URL == "" {
		return Result{}, errors.New("missing store URL")
	}
	siteRoot, err := catalog.NormalizeSiteRoot(p.URL)
	if err != nil {
		return Result{}, err
	}
	if p.OutputDir == "" {
		p.OutputDir = ResolveOutputDir("")
	}

	jr := &run{Runner: r, jobID: uuid.NewString()}
	jr.log = r.log.With().Str("job_id", jr.jobID).Logger()
	if r.emit != nil {
		jr.log = jr.log.Hook(r.emit.Hook(zerolog.InfoLevel))
	}

	rootDir := filepath.Join(p.OutputDir, hostSegment(siteRoot), time.Now().Format("20060102_150405"))
	wooDir := filepath.Join(rootDir, "woocommerce")
	productsDir := filepath.Join(wooDir, "products")
	if err := os.MkdirAll(productsDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	res = Result{
		JobID:     jr.jobID,
		Source:    siteRoot,
		OutputDir: rootDir,
		Files: Files{
			MetadataJSON: filepath.Join(wooDir, MetadataFile),
			ImportCSV:    filepath.Join(wooDir, ImportFile),
		},
	}

	jr.startRecord(ctx, siteRoot, rootDir)
	defer func() {
		jr.finishRecord(ctx, siteRoot, rootDir, err)
	}()

	jr.log.Info().Msgf("Extractor started for %s", siteRoot)
	jr.log.Info().Msgf("Output folder: %s", rootDir)
	jr.report(protocol.StageScanning)

	src, err := integrations.New(r.source, jr.log, siteRoot, r.sourceCfg)
	if err != nil {
		return res, err
	}

	products, err := jr.collect(ctx, src, p.MaxProducts)
	if err != nil {
		return res, err
	}

	if err := writeFile(res.Files.MetadataJSON, func(f *os.File) error {
		return export.WriteMetadata(f, export.NewMetadata(siteRoot, time.Now(), products))
	}); err != nil {
		return res, err
	}
	jr.log.Info().Msg("metadata.json generated.")

	if err := jr.downloadImages(ctx, src, productsDir, products); err != nil {
		return res, err
	}

	table := export.BuildRows(products)
	if err := writeFile(res.Files.ImportCSV, func(f *os.File) error {
		return export.WriteCSV(f, table)
	}); err != nil {
		return res, err
	}
	jr.summary.CSVGenerated = true
	jr.summary.UnmatchedSelections = table.Stats.UnmatchedSelections
	jr.progress.CSVGenerated = 1
	jr.log.Info().Msg("woocommerce-import.csv generated.")
	if n := table.Stats.UnmatchedSelections; n > 0 {
		jr.log.Warn().Int("unmatched", n).Msgf("Variation attributes without a matching value: %d", n)
	}

	jr.report(protocol.StageCompleted)
	jr.log.Info().Msgf("Export completed: products=%d, variations=%d, images=%d",
		len(products), jr.summary.VariationsDiscovered, jr.summary.ImagesDownloaded)

	if r.db != nil {
		if err := woocommerce.Snapshot(ctx, r.db, jr.jobID, products); err != nil {
			jr.log.Error().Err(err).Msg("product snapshot failed")
		}
		recordIssues(ctx, r.db, jr.log, jr.jobID, products, table.Unmatched)
	}

	res.Summary = jr.summary
	return res, nil
}

// collect: pierwszy przebieg (produkty, potem warianty produktów zmiennych).
func (r *run) collect(ctx context.Context, src integrations.Source, maxProducts int) ([]catalog.Product, error) {
	raw, err := src.Products(ctx, maxProducts, func(_, _, total int) {
		r.progress.ProductsDiscovered = total
		r.report(protocol.StageScanning)
	})
	if err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(raw))
	for i, item := range raw {
		products[i] = catalog.SimplifyProduct(item, src.SiteRoot())
	}
	r.progress.ProductsDiscovered = len(products)
	r.summary.ProductsDiscovered = len(products)
	r.log.Info().Msgf("Products discovered: %d", len(products))

	var variable []int
	for i, p := range products {
		if p.IsVariable() {
			variable = append(variable, i)
		}
	}
	r.progress.VariationProductsTotal = len(variable)
	r.summary.VariableProducts = len(variable)
	if len(variable) > 0 {
		r.log.Info().Msgf("Variable products detected: %d", len(variable))
	}

	for _, i := range variable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := products[i].IDText()
		rawVariations, err := src.Variations(ctx, id)
		if err != nil {
			return nil, err
		}
		details := make([]catalog.Variation, 0, len(rawVariations))
		for _, v := range rawVariations {
			details = append(details, catalog.SimplifyVariation(v, src.SiteRoot()))
		}
		products[i].VariationDetails = details
		r.summary.VariationsDiscovered += len(details)
		r.progress.VariationProductsProcessed++
		r.log.Info().Msgf("Product %s: variations=%d", id, len(details))
		r.report(protocol.StageVariations)
	}
	return products, nil
}

func (r *run) downloadImages(ctx context.Context, src integrations.Source, productsDir string, products []catalog.Product) error {
	r.report(protocol.StageImages)
	dl := media.NewDownloader(r.log, src, r.db, r.jobID)
	for _, p := range products {
		_, _, err := dl.DownloadProduct(ctx, productsDir, p, func(o media.Outcome) {
			if o.Downloaded() {
				r.progress.ImagesDownloaded++
			} else {
				r.progress.ImagesSkipped++
			}
			r.report(protocol.StageImages)
		})
		if err != nil {
			return err
		}
		r.progress.ProductsProcessed++
		r.report(protocol.StageImages)
	}
	r.summary.ProductsProcessed = r.progress.ProductsProcessed
	r.summary.ImagesDownloaded = r.progress.ImagesDownloaded
	r.summary.ImagesSkipped = r.progress.ImagesSkipped
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func (r *run) startRecord(ctx context.Context, siteRoot, rootDir string) {
	if r.db == nil {
		return
	}
	if err := r.db.WithContext(ctx).Create(&db.ExportJob{
		JobID:     r.jobID,
		Source:    siteRoot,
		OutputDir: rootDir,
		Status:    db.JobRunning,
	}).Error; err != nil {
		r.log.Error().Err(err).Msg("export job insert failed")
	}
}

func (r *run) finishRecord(ctx context.Context, siteRoot, rootDir string, runErr error) {
	if r.db == nil {
		return
	}
	now := time.Now()
	updates := map[string]any{
		"status":      db.JobDone,
		"last_error":  "",
		"products":    r.summary.ProductsDiscovered,
		"variations":  r.summary.VariationsDiscovered,
		"images_ok":   r.progress.ImagesDownloaded,
		"images_skip": r.progress.ImagesSkipped,
		"unmatched":   r.summary.UnmatchedSelections,
		"finished_at": now,
	}
	if runErr != nil {
		updates["status"] = db.JobFailed
		updates["last_error"] = runErr.Error()
	}
	// bez ctx joba: zapis statusu także po anulowaniu
	gdb := r.db.WithContext(context.WithoutCancel(ctx))
	if err := gdb.Model(&db.ExportJob{}).Where("job_id = ?", r.jobID).Updates(updates).Error; err != nil {
		r.log.Error().Err(err).Msg("export job update failed")
	}
	if runErr == nil {
		if err := db.SetKV(gdb, db.LastExportKey(siteRoot), rootDir); err != nil {
			r.log.Error().Err(err).Msg("last export update failed")
		}
	}
}

// hostSegment: nazwa katalogu sklepu, host małymi literami ("store" bez hosta).
func hostSegment(siteRoot string) string {
	host := "store"
	if u, err := url.Parse(siteRoot); err == nil && u.Hostname() != "" {
		host = strings.ToLower(u.Hostname())
	}
	return catalog.SanitizeSegment(host)
}
