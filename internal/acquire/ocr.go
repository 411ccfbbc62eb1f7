package acquire

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/gen2brain/heic"
)

// Recognizer converts a raster image file into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Tesseract implements the Recognizer interface by running the
// tesseract binary. The language pair defaults to Czech plus English to
// maximize recall on mixed-language invoices.
type Tesseract struct {
	binary string
	langs  string
	runner Runner
}

// NewTesseract creates a new Tesseract Recognizer instance
func NewTesseract(binary, langs string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if langs == "" {
		langs = "ces+eng"
	}
	return &Tesseract{binary: binary, langs: langs, runner: execRunner{}}
}

// NewTesseractWithRunner creates a Tesseract with a custom command
// runner for testing
func NewTesseractWithRunner(binary, langs string, runner Runner) *Tesseract {
	t := NewTesseract(binary, langs)
	t.runner = runner
	return t
}

// Recognize runs OCR on the image at imagePath and returns the decoded
// text. HEIC/HEIF images (common on iPhones) are decoded and re-staged
// as PNG first since tesseract cannot read them; the staged copy is
// removed before returning.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	path := imagePath
	if isHEICFile(imagePath) {
		staged, cleanup, err := stageHEICAsPNG(imagePath)
		if err != nil {
			return "", fmt.Errorf("converting HEIC image: %w", err)
		}
		defer cleanup()
		path = staged
	}

	// tesseract <file> stdout -l <langs>
	out, errb, err := t.runner.Run(ctx, t.binary, path, "stdout", "-l", t.langs)
	if err != nil {
		return "", fmt.Errorf("tesseract: %s: %w", truncate(string(errb), 1<<10), err)
	}
	return string(out), nil
}

// isHEICFile sniffs the ftyp box for HEIC/HEIF brands.
func isHEICFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 12)
	if _, err := f.Read(head); err != nil {
		return false
	}
	if string(head[4:8]) != "ftyp" {
		return false
	}
	switch string(head[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// stageHEICAsPNG decodes a HEIC image and writes it as a temporary PNG.
// The returned cleanup removes the staged file.
func stageHEICAsPNG(path string) (string, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading image: %w", err)
	}
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("decoding HEIC image: %w", err)
	}

	tmp, err := os.CreateTemp("", "faktura-heic-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("staging PNG: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("encoding PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("closing staged PNG: %w", err)
	}

	name := tmp.Name()
	return name, func() { os.Remove(name) }, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
