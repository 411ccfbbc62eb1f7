package acquire

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EmbeddedImage is one raster image pulled out of a PDF, identified by
// its page and object number so callers can keep document order.
type EmbeddedImage struct {
	PageNr   int
	ObjNr    int
	Data     []byte
	FileType string // "png", "jpg", "tiff", ...
}

// PDFReader exposes the two things text acquisition needs from a PDF:
// its text layer and its embedded raster images.
type PDFReader interface {
	// Text returns the text layer, pages concatenated in ascending order.
	Text(path string) (string, error)

	// EmbeddedImages returns every embedded raster image, ordered by
	// page then by object number within a page.
	EmbeddedImages(path string) ([]EmbeddedImage, error)
}

// PDF implements PDFReader using MuPDF for the text layer and pdfcpu
// for image extraction.
type PDF struct{}

// NewPDF creates a new PDF reader instance
func NewPDF() *PDF {
	return &PDF{}
}

// Text extracts the text layer page by page. A page that fails to
// render is logged and skipped; only a document that cannot be opened
// at all is an error.
func (p *PDF) Text(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		txt, err := doc.Text(n)
		if err != nil {
			slog.Warn("Failed to extract page text", "path", path, "page", n, "error", err)
			continue
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

// EmbeddedImages extracts every raster image embedded in the PDF. A
// page whose images cannot be extracted is logged and skipped.
func (p *PDF) EmbeddedImages(path string) ([]EmbeddedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	var images []EmbeddedImage
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageImages, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			slog.Warn("Failed to extract page images", "path", path, "page", pageNr, "error", err)
			continue
		}

		// Map iteration order is random; sort by object number for a
		// deterministic in-page order.
		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := pageImages[objNr]
			data, err := io.ReadAll(img)
			if err != nil {
				slog.Warn("Failed to read embedded image", "path", path, "page", pageNr, "obj", objNr, "error", err)
				continue
			}
			images = append(images, EmbeddedImage{
				PageNr:   pageNr,
				ObjNr:    objNr,
				Data:     data,
				FileType: img.FileType,
			})
		}
	}
	return images, nil
}
