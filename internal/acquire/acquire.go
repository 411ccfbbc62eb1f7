package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the declared media kind of an uploaded document.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// minPDFTextLen is the threshold below which a PDF's native text layer
// is considered useless (image-only or scan-only document) and its
// embedded images are OCRed instead.
const minPDFTextLen = 100

// Acquirer produces the best-effort plain-text transcription of a
// document. It never fails; whatever text could be assembled is
// returned, possibly empty.
type Acquirer struct {
	pdf PDFReader
	ocr Recognizer
}

// NewAcquirer creates a new Acquirer instance
func NewAcquirer(pdf PDFReader, ocr Recognizer) *Acquirer {
	return &Acquirer{pdf: pdf, ocr: ocr}
}

// AcquireText transcribes the document at path according to its
// declared media kind.
func (a *Acquirer) AcquireText(ctx context.Context, path string, kind Kind) string {
	switch kind {
	case KindPDF:
		return a.acquirePDF(ctx, path)
	case KindImage:
		return a.acquireImage(ctx, path)
	default:
		slog.Warn("Unknown media kind", "path", path, "kind", kind)
		return ""
	}
}

// acquirePDF extracts the PDF's text layer and, when it is too sparse,
// OCRs every embedded image and appends the results in page-then-image
// order.
func (a *Acquirer) acquirePDF(ctx context.Context, path string) string {
	text, err := a.pdf.Text(path)
	if err != nil {
		slog.Error("Failed to extract PDF text", "path", path, "error", err)
		text = ""
	}

	if len(strings.TrimSpace(text)) >= minPDFTextLen {
		return text
	}

	slog.Info("PDF text layer is sparse, running OCR on embedded images", "path", path, "text_len", len(strings.TrimSpace(text)))

	images, err := a.pdf.EmbeddedImages(path)
	if err != nil {
		slog.Error("Failed to extract embedded images", "path", path, "error", err)
		return text
	}
	if len(images) == 0 {
		return text
	}

	// Embedded image bytes are staged on disk for the OCR binary and
	// removed on every exit path.
	tmpDir, err := os.MkdirTemp("", "faktura-ocr-*")
	if err != nil {
		slog.Error("Failed to create OCR staging directory", "path", path, "error", err)
		return text
	}
	defer os.RemoveAll(tmpDir)

	for i, img := range images {
		staged := filepath.Join(tmpDir, fmt.Sprintf("img-%04d.%s", i, imageExt(img.FileType)))
		if err := os.WriteFile(staged, img.Data, 0644); err != nil {
			slog.Warn("Failed to stage embedded image", "path", path, "page", img.PageNr, "obj", img.ObjNr, "error", err)
			continue
		}
		ocrText, err := a.ocr.Recognize(ctx, staged)
		if err != nil {
			slog.Warn("OCR failed for embedded image", "path", path, "page", img.PageNr, "obj", img.ObjNr, "error", err)
			continue
		}
		text += "\n\n" + ocrText
	}
	return text
}

// acquireImage runs OCR directly on the whole image.
func (a *Acquirer) acquireImage(ctx context.Context, path string) string {
	text, err := a.ocr.Recognize(ctx, path)
	if err != nil {
		slog.Error("OCR failed for image", "path", path, "error", err)
		return ""
	}
	return text
}

func imageExt(fileType string) string {
	if fileType == "" {
		return "png"
	}
	return fileType
}
