// Package export persists stitched captures as PNG files or single-page
// PDFs, and builds sanitized suggested filenames from page metadata.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Format identifies an output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat validates a format string; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("export: unsupported format: %q", s)
	}
}

// SuggestFilename builds "<title-or-host>_<timestamp>.<ext>" with everything
// unsafe for a filesystem stripped out.
func SuggestFilename(title, host string, ts time.Time, f Format) string {
	base := sanitize(title)
	if base == "" {
		base = sanitize(host)
	}
	if base == "" {
		base = "capture"
	}
	if len(base) > 80 {
		base = strings.Trim(base[:80], "_")
	}
	return fmt.Sprintf("%s_%s.%s", base, ts.UTC().Format("20060102T150405"), f)
}

// sanitize lowercases and maps every run of characters outside [a-z0-9-]
// to a single underscore.
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := true // also swallows leading underscores
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Write persists the encoded PNG at path in the requested format, creating
// parent directories as needed.
func Write(path string, f Format, png []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}
	switch f {
	case FormatPNG, "":
		return WritePNG(path, png)
	case FormatPDF:
		return WritePDF(path, png)
	default:
		return fmt.Errorf("export: unsupported format: %q", f)
	}
}

// WritePNG writes the encoded PNG bytes as-is.
func WritePNG(path string, png []byte) error {
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("export: write png: %w", err)
	}
	return nil
}

// WritePDF imports the PNG into a single-page PDF sized to the image.
func WritePDF(path string, png []byte) error {
	tmp := path + ".tmp.png"
	if err := os.WriteFile(tmp, png, 0o644); err != nil {
		return fmt.Errorf("export: write temp png: %w", err)
	}
	defer os.Remove(tmp)

	if err := api.ImportImagesFile([]string{tmp}, path, nil, nil); err != nil {
		return fmt.Errorf("export: import png into pdf: %w", err)
	}
	return nil
}
