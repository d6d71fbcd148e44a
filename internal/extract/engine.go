// Package extract implements hybrid PDF text extraction: a fast text-layer
// pass with a rasterize+OCR fallback for scanned documents.
package extract

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"document-backend/internal/shared/telemetry"
)

// Method labels reported by the engine. The ingestion workflow maps them to
// the stored extraction-method values.
const (
	MethodTextLayer = "pdf-text-layer"
	MethodOCR       = "tesseract-ocr"
)

// minNativeChars is the trimmed character count under which the text-layer
// pass is considered insufficient and the OCR fallback runs.
const minNativeChars = 100

// Result is the outcome of one extraction. Method always reflects the last
// stage that ran, even when that stage produced no text.
type Result struct {
	Text   string
	Method string
}

// Options configures the OCR fallback toolchain.
type Options struct {
	Lang         string
	DPI          int
	Timeout      time.Duration
	TesseractCmd string
	PdftoppmCmd  string
}

// Engine extracts text from PDF files. It never fails from the caller's
// perspective: every internal fault degrades to empty text, and the caller
// decides whether short output is acceptable.
type Engine struct {
	opts Options
	log  *telemetry.Logger

	nativeFn func(path string) (string, error)
	ocrFn    func(ctx context.Context, path string) (string, error)
}

// NewEngine builds an Engine. A nil logger falls back to the process default.
func NewEngine(opts Options, log *telemetry.Logger) *Engine {
	if opts.Lang == "" {
		opts.Lang = "spa"
	}
	if opts.DPI <= 0 {
		opts.DPI = 500
	}
	if opts.TesseractCmd == "" {
		opts.TesseractCmd = "tesseract"
	}
	if opts.PdftoppmCmd == "" {
		opts.PdftoppmCmd = "pdftoppm"
	}
	if log == nil {
		log = telemetry.Default()
	}
	e := &Engine{opts: opts, log: log}
	e.nativeFn = nativeText
	e.ocrFn = e.runOCR
	return e
}

// Extract runs the text-layer pass and, when its output is empty or shorter
// than the sufficiency threshold after trimming, falls back to OCR.
func (e *Engine) Extract(ctx context.Context, path string) Result {
	text, err := e.nativeFn(path)
	if err != nil {
		e.log.Warn("extract.native.failed", map[string]any{"path": path, "err": err.Error()})
		text = ""
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) >= minNativeChars {
		return Result{Text: text, Method: MethodTextLayer}
	}

	e.log.Info("extract.fallback.ocr", map[string]any{
		"path":         path,
		"native_chars": utf8.RuneCountInString(strings.TrimSpace(text)),
	})

	ocrText, err := e.ocrFn(ctx, path)
	if err != nil {
		e.log.Warn("extract.ocr.failed", map[string]any{"path": path, "err": err.Error()})
		ocrText = ""
	}
	return Result{Text: ocrText, Method: MethodOCR}
}
