package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	return out
}

func TestEmitter_Events(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	e.Log("Output folder: /tmp/x")
	e.Progress(Progress{Stage: StageImages, ProductsDiscovered: 3, ImagesSkipped: 1})
	e.Result(map[string]any{"source": "https://shop.example.com/", "summary": map[string]any{"csvGenerated": true}})
	e.Error(errors.New("Store URL must use http:// or https://"))

	got := lines(t, &buf)
	require.Len(t, got, 4)

	assert.Equal(t, map[string]any{"type": "log", "message": "Output folder: /tmp/x"}, got[0])

	assert.Equal(t, "progress", got[1]["type"])
	assert.Equal(t, map[string]any{
		"stage":                      "downloading_images",
		"productsDiscovered":         float64(3),
		"productsProcessed":          float64(0),
		"imagesDownloaded":           float64(0),
		"imagesSkipped":              float64(1),
		"csvGenerated":               float64(0),
		"variationProductsTotal":     float64(0),
		"variationProductsProcessed": float64(0),
	}, got[1]["patch"])

	assert.Equal(t, "result", got[2]["type"])
	assert.Equal(t, "https://shop.example.com/", got[2]["result"].(map[string]any)["source"])

	assert.Equal(t, map[string]any{"type": "error", "message": "Store URL must use http:// or https://"}, got[3])
}

func TestEmitter_NoLevelOrTimestamp(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf).Log("hello")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], zerolog.LevelFieldName)
	assert.NotContains(t, got[0], zerolog.TimestampFieldName)
}

func TestEmitter_Hook(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	var file bytes.Buffer
	logger := zerolog.New(&file).Hook(e.Hook(zerolog.InfoLevel))

	logger.Debug().Msg("debug stays in the file")
	logger.Info().Msg("Products discovered: 2")
	logger.Warn().Msg("Image download failed")
	logger.Info().Send()

	got := lines(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "Products discovered: 2", got[0]["message"])
	assert.Equal(t, "Image download failed", got[1]["message"])
	assert.Contains(t, file.String(), "debug stays in the file")
}
