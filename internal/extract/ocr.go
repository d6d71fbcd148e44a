package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// runOCR rasterizes every page with pdftoppm and recognizes each image with
// tesseract, concatenating page outputs in order. Any failure aborts the
// whole pass; the engine degrades it to empty text.
func (e *Engine) runOCR(ctx context.Context, pdfPath string) (string, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	imgDir, err := os.MkdirTemp("", "ocr-pages-")
	if err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(imgDir); rmErr != nil {
			e.log.Warn("extract.ocr.cleanup_failed", map[string]any{"dir": imgDir, "err": rmErr.Error()})
		}
	}()

	pages, err := e.rasterize(ctx, pdfPath, imgDir)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, img := range pages {
		pageText, err := e.recognize(ctx, img)
		if err != nil {
			return "", err
		}
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// rasterize renders every page as a PNG and returns the image paths in page
// order. pdftoppm zero-pads page numbers, so a lexical sort is positional.
func (e *Engine) rasterize(ctx context.Context, pdfPath, imgDir string) ([]string, error) {
	prefix := filepath.Join(imgDir, "page")
	cmd := exec.CommandContext(ctx, e.opts.PdftoppmCmd, "-r", strconv.Itoa(e.opts.DPI), "-png", pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rasterize pages: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list page images: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterize pages: no output for %s", pdfPath)
	}
	sort.Strings(pages)
	return pages, nil
}

func (e *Engine) recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.opts.TesseractCmd, imagePath, "stdout", "-l", e.opts.Lang)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("recognize %s: %w: %s", filepath.Base(imagePath), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
