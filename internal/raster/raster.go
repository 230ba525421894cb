// Package raster converts roster report PDFs into PNG pages by shelling out
// to the ImageMagick convert binary.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"

	"github.com/google/uuid"
)

// Converter rasterizes PDFs via an external convert binary.
type Converter struct {
	binary  string
	workDir string
	log     *logger.Logger
}

// NewConverter creates a Converter.
func NewConverter(cfg config.RasterConfig, log *logger.Logger) *Converter {
	return &Converter{
		binary:  cfg.GetConvertBinary(),
		workDir: cfg.GetRasterWorkDir(),
		log:     log,
	}
}

// Convert writes the PDF to a temp file, rasterizes it at density 200
// resized to 800x1000, and returns the page images in page order. The
// caller consumes only the first page. Temporary files are removed before
// returning.
func (c *Converter) Convert(ctx context.Context, pdf []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp(c.workDir, "roster-raster-")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	pdfPath := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, err
	}

	prefix := uuid.NewString()
	outputPattern := filepath.Join(dir, prefix+"-%d.png")

	cmd := exec.CommandContext(ctx, c.binary,
		"-density", "200", pdfPath, "-resize", "800x1000", outputPattern)
	if output, err := cmd.CombinedOutput(); err != nil {
		c.log.Error("pdf conversion failed", "error", err, "output", string(output))
		return nil, fmt.Errorf("convert pdf: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pagePaths []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			pagePaths = append(pagePaths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(pagePaths) == 0 {
		return nil, fmt.Errorf("convert pdf: no pages produced")
	}

	// convert numbers pages -0, -1, ...; lexical order matches page order
	// for single-digit page counts, which roster reports never exceed.
	sort.Strings(pagePaths)

	pages := make([][]byte, 0, len(pagePaths))
	for _, p := range pagePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		pages = append(pages, data)
	}

	c.log.Debug("pdf rasterized", "pages", len(pages))
	return pages, nil
}
