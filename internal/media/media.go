// internal/media/media.go
package media

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/bartek5186/wooexport/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fetcher dostarcza bajty obrazka i Content-Type.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Outcome jednego obrazka; Err != nil liczy się jako pominięty.
type Outcome struct {
	URL     string
	Path    string
	Skipped bool
	SHA256  string
	Size    int64
	Err     error
}

// Downloaded: plik faktycznie pobrany i zapisany.
func (o Outcome) Downloaded() bool { return !o.Skipped && o.Err == nil }

type Downloader struct {
	log   zerolog.Logger
	fetch Fetcher
	db    *gorm.DB // nil = bez zapisu image_assets
	jobID string
}

func NewDownloader(log zerolog.Logger, fetch Fetcher, gdb *gorm.DB, jobID string) *Downloader {
	return &Downloader{log: log, fetch: fetch, db: gdb, jobID: jobID}
}

// preferowane rozszerzenia; mime.ExtensionsByType zwraca je alfabetycznie
var preferredExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/avif":    ".avif",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tif",
}

// ProductDir: products/{slug albo id}-{id}/images pod productsDir.
func ProductDir(productsDir string, p catalog.Product) string {
	id := p.IDText()
	slug := p.Slug
	if strings.TrimSpace(slug) == "" {
		slug = id
	}
	name := catalog.SanitizeSegment(slug) + "-" + catalog.SanitizeSegment(id)
	return filepath.Join(productsDir, name, "images")
}

// Destination: {stem}-{sha1(url)[:10]}{ext}; bez rozszerzenia .bin.
func Destination(rawURL, dir string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.EscapedPath())
	}
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	base = catalog.SanitizeSegment(base)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// ".hidden": całość to nazwa
		stem, ext = base, ""
	}
	if ext == "" || ext == "." {
		ext = ".bin"
	}

	sum := sha1.Sum([]byte(rawURL))
	return filepath.Join(dir, stem+"-"+hex.EncodeToString(sum[:])[:10]+ext)
}

// ExtensionFor zwraca rozszerzenie dla Content-Type albo "".
func ExtensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	if mt == "" {
		return ""
	}
	if ext, ok := preferredExt[mt]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Download zapisuje obrazek w dir. Istniejący plik docelowy = pominięty bez pobierania.
func (d *Downloader) Download(ctx context.Context, productID, rawURL, dir string) Outcome {
	out := Outcome{URL: rawURL}
	if strings.TrimSpace(rawURL) == "" {
		out.Skipped = true
		return out
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		out.Err = fmt.Errorf("mkdir %s: %w", dir, err)
		return d.finish(ctx, productID, out)
	}

	dest := Destination(rawURL, dir)
	out.Path = dest
	if fi, err := os.Stat(dest); err == nil {
		out.Skipped = true
		out.Size = fi.Size()
		out.SHA256, _ = fileSHA256(dest)
		return d.finish(ctx, productID, out)
	}

	body, contentType, err := d.fetch.Fetch(ctx, rawURL)
	if err != nil {
		out.Err = err
		return d.finish(ctx, productID, out)
	}

	target := dest
	if filepath.Ext(dest) == ".bin" {
		if ext := ExtensionFor(contentType); ext != "" {
			target = strings.TrimSuffix(dest, ".bin") + ext
		}
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		out.Err = fmt.Errorf("write %s: %w", target, err)
		return d.finish(ctx, productID, out)
	}

	sum := sha256.Sum256(body)
	out.Path = target
	out.SHA256 = hex.EncodeToString(sum[:])
	out.Size = int64(len(body))
	return d.finish(ctx, productID, out)
}

// DownloadProduct pobiera obrazki produktu i jego wariantów (bez duplikatów).
func (d *Downloader) DownloadProduct(ctx context.Context, productsDir string, p catalog.Product, onEach func(Outcome)) (downloaded, skipped int, err error) {
	dir := ProductDir(productsDir, p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	for _, src := range p.ImageURLs() {
		if err := ctx.Err(); err != nil {
			return downloaded, skipped, err
		}
		o := d.Download(ctx, p.IDText(), src, dir)
		if o.Downloaded() {
			downloaded++
		} else {
			skipped++
		}
		if onEach != nil {
			onEach(o)
		}
	}
	return downloaded, skipped, nil
}

func (d *Downloader) finish(ctx context.Context, productID string, out Outcome) Outcome {
	if out.Err != nil {
		d.log.Warn().Err(out.Err).Str("url", out.URL).
			Msgf("Image download failed (%s): %v", out.URL, out.Err)
	}
	if d.db == nil || out.Path == "" {
		return out
	}

	asset := db.ImageAsset{
		Path:      out.Path,
		URL:       out.URL,
		JobID:     d.jobID,
		ProductID: productID,
		SHA256:    out.SHA256,
		SizeBytes: out.Size,
		Skipped:   out.Skipped || out.Err != nil,
	}
	if out.Err != nil {
		asset.LastError = out.Err.Error()
	}
	if err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "job_id", "product_id", "sha256", "size_bytes", "skipped", "last_error"}),
	}).Create(&asset).Error; err != nil && !errors.Is(err, context.Canceled) {
		d.log.Error().Err(err).Str("path", out.Path).Msg("image asset upsert failed")
	}
	return out
}

func fileSHA256(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
