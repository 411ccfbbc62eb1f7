package invoice

import (
	"errors"
	"strings"
	"time"

	"faktura-scan/internal/acquire"
)

// Processing failures that abort a run without writing a record.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoText           = errors.New("no text could be extracted")
)

// Document represents one uploaded invoice file awaiting or having
// undergone extraction.
type Document struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"` // stored name under the storage root
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Processed        bool      `json:"processed"`
}

// Kind maps the document's MIME type to its media kind. An empty kind
// means the content type is not supported by the pipeline.
func (d *Document) Kind() acquire.Kind {
	switch {
	case strings.HasPrefix(d.ContentType, "application/pdf"):
		return acquire.KindPDF
	case strings.HasPrefix(d.ContentType, "image/"):
		return acquire.KindImage
	default:
		return ""
	}
}

// Record is the normalized, persisted output of one successful pipeline
// run. Exactly one record exists per processed document; it is never
// mutated after creation. Numeric and date fields are either a valid
// typed value or nil, never a raw unparsed string.
type Record struct {
	DocumentID      string     `json:"document_id"`
	InvoiceNumber   *string    `json:"invoice_number"`
	InvoiceDate     *time.Time `json:"invoice_date"`
	DueDate         *time.Time `json:"due_date"`
	TotalAmount     *float64   `json:"total_amount"`
	VatAmount       *float64   `json:"vat_amount"`
	Currency        *string    `json:"currency"`
	SupplierName    *string    `json:"supplier_name"`
	SupplierTaxID   *string    `json:"supplier_tax_id"`
	SupplierVatID   *string    `json:"supplier_vat_id"`
	CustomerName    *string    `json:"customer_name"`
	CustomerTaxID   *string    `json:"customer_tax_id"`
	CustomerVatID   *string    `json:"customer_vat_id"`
	RawText         string     `json:"raw_text"`
	Model           string     `json:"llm_model_used"`
	ConfidenceScore float64    `json:"confidence_score"`
	ProcessedAt     time.Time  `json:"processed_at"`
}
