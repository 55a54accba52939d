// internal/protocol/protocol.go
package protocol

import (
	"io"

	"github.com/rs/zerolog"
)

type Stage string

const (
	StageScanning   Stage = "scanning_products"
	StageVariations Stage = "processing_variations"
	StageImages     Stage = "downloading_images"
	StageCompleted  Stage = "completed"
)

// Progress to pełny stan postępu wysyłany jako "patch".
type Progress struct {
	Stage                      Stage
	ProductsDiscovered         int
	ProductsProcessed          int
	ImagesDownloaded           int
	ImagesSkipped              int
	CSVGenerated               int
	VariationProductsTotal     int
	VariationProductsProcessed int
}

func (p Progress) MarshalZerologObject(e *zerolog.Event) {
	e.Str("stage", string(p.Stage)).
		Int("productsDiscovered", p.ProductsDiscovered).
		Int("productsProcessed", p.ProductsProcessed).
		Int("imagesDownloaded", p.ImagesDownloaded).
		Int("imagesSkipped", p.ImagesSkipped).
		Int("csvGenerated", p.CSVGenerated).
		Int("variationProductsTotal", p.VariationProductsTotal).
		Int("variationProductsProcessed", p.VariationProductsProcessed)
}

// Emitter pisze zdarzenia jako linie JSON (bez poziomu i czasu).
type Emitter struct {
	l zerolog.Logger
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{l: zerolog.New(zerolog.SyncWriter(w))}
}

func (e *Emitter) Log(message string) {
	e.l.Log().Str("type", "log").Str("message", message).Send()
}

func (e *Emitter) Progress(p Progress) {
	e.l.Log().Str("type", "progress").Object("patch", p).Send()
}

func (e *Emitter) Result(result any) {
	e.l.Log().Str("type", "result").Interface("result", result).Send()
}

func (e *Emitter) Error(err error) {
	e.l.Log().Str("type", "error").Str("message", err.Error()).Send()
}

// Hook przekazuje wiadomości loggera od poziomu min jako zdarzenia "log".
func (e *Emitter) Hook(min zerolog.Level) zerolog.Hook {
	return zerolog.HookFunc(func(_ *zerolog.Event, level zerolog.Level, msg string) {
		if level < min || level == zerolog.NoLevel || msg == "" {
			return
		}
		e.Log(msg)
	})
}
