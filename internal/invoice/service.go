package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"faktura-scan/internal/acquire"
	"faktura-scan/internal/extraction"
)

// defaultConfidence is recorded when the model omits its own score.
const defaultConfidence = 0.7

// IDGenerator generates unique IDs for documents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// TextAcquirer produces the raw text of a stored document
type TextAcquirer interface {
	AcquireText(ctx context.Context, path string, kind acquire.Kind) string
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles document and extraction operations
type Service struct {
	db           DB
	storage      Storage
	acquirer     TextAcquirer
	extractor    extraction.Extractor
	defaultModel string
	idGenerator  IDGenerator
	timeSource   TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, storage Storage, acquirer TextAcquirer, extractor extraction.Extractor, defaultModel string) *Service {
	return &Service{
		db:           db,
		storage:      storage,
		acquirer:     acquirer,
		extractor:    extractor,
		defaultModel: defaultModel,
		idGenerator:  &defaultIDGenerator{},
		timeSource:   &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, acquirer TextAcquirer, extractor extraction.Extractor, defaultModel string, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:           db,
		storage:      storage,
		acquirer:     acquirer,
		extractor:    extractor,
		defaultModel: defaultModel,
		idGenerator:  idGen,
		timeSource:   timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	// Get the extension
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Remove special characters, keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	// Replace multiple spaces with single space
	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	// Trim spaces
	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	// If base is empty after sanitization, use a default
	if base == "" {
		base = "invoice"
	}

	return base + ext
}

// UploadDocument stores an uploaded file and registers it for processing
func (s *Service) UploadDocument(filename string, data []byte, contentType string) (*Document, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	document := &Document{
		ID:               id,
		OriginalFilename: filename,
		ContentType:      contentType,
		Size:             int64(len(data)),
		UploadedAt:       now,
	}
	if document.Kind() == "" {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	// Sanitize filename to clean up phone-generated long filenames
	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}
	document.Filename = savedPath

	if err := s.db.SaveDocument(document); err != nil {
		// Clean up file if database save fails
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving document to database: %w", err)
	}

	return document, nil
}

// ProcessDocument runs the extraction pipeline for a stored document. It
// never panics the caller's goroutine; failures are logged and the document
// simply stays unprocessed.
func (s *Service) ProcessDocument(ctx context.Context, documentID, model string) {
	if model == "" {
		model = s.defaultModel
	}
	if err := s.process(ctx, documentID, model); err != nil {
		slog.Error("Failed to process document",
			"document_id", documentID,
			"model", model,
			"error", err,
		)
	}
}

func (s *Service) process(ctx context.Context, documentID, model string) error {
	document, err := s.db.GetDocument(documentID)
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	text := s.acquirer.AcquireText(ctx, s.storage.Path(document.Filename), document.Kind())
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s", ErrNoText, documentID)
	}

	fields, err := s.extractor.ExtractFields(ctx, text, model)
	if err != nil {
		// Extraction errors degrade to an empty field set; the record is
		// still written so the raw text survives.
		slog.Warn("Field extraction failed, saving empty fields",
			"document_id", documentID,
			"model", model,
			"error", err,
		)
	}

	record := s.buildRecord(documentID, text, model, fields)
	if err := s.db.SaveResult(record); err != nil {
		return fmt.Errorf("saving extraction result: %w", err)
	}

	slog.Info("Document processed",
		"document_id", documentID,
		"model", model,
		"confidence", record.ConfidenceScore,
	)
	return nil
}

func (s *Service) buildRecord(documentID, text, model string, fields extraction.FieldSet) *Record {
	confidence := defaultConfidence
	if score, ok := fields.ConfidenceScore.Score(); ok {
		confidence = score
	}

	return &Record{
		DocumentID:      documentID,
		InvoiceNumber:   fields.InvoiceNumber.Ptr(),
		InvoiceDate:     extraction.NormalizeDateField(fields.InvoiceDate),
		DueDate:         extraction.NormalizeDateField(fields.DueDate),
		TotalAmount:     extraction.NormalizeAmountField(fields.TotalAmount),
		VatAmount:       extraction.NormalizeAmountField(fields.VatAmount),
		Currency:        fields.Currency.Ptr(),
		SupplierName:    fields.SupplierName.Ptr(),
		SupplierTaxID:   fields.SupplierTaxID.Ptr(),
		SupplierVatID:   fields.SupplierVatID.Ptr(),
		CustomerName:    fields.CustomerName.Ptr(),
		CustomerTaxID:   fields.CustomerTaxID.Ptr(),
		CustomerVatID:   fields.CustomerVatID.Ptr(),
		RawText:         text,
		Model:           model,
		ConfidenceScore: confidence,
		ProcessedAt:     s.timeSource.Now(),
	}
}

// GetDocument retrieves a document by ID
func (s *Service) GetDocument(id string) (*Document, error) {
	document, err := s.db.GetDocument(id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return document, nil
}

// ListDocuments returns all documents
func (s *Service) ListDocuments() ([]*Document, error) {
	documents, err := s.db.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return documents, nil
}

// GetRecord retrieves the extraction record for a document
func (s *Service) GetRecord(documentID string) (*Record, error) {
	record, err := s.db.GetRecord(documentID)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// DeleteDocument removes a document, its extraction record, and its file
func (s *Service) DeleteDocument(id string) error {
	document, err := s.db.GetDocument(id)
	if err != nil {
		return fmt.Errorf("getting document for deletion: %w", err)
	}

	// Delete file
	if err := s.storage.Delete(document.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", document.Filename, "error", err)
	}

	// Delete from database
	if err := s.db.DeleteDocument(id); err != nil {
		return fmt.Errorf("deleting document from database: %w", err)
	}
	return nil
}

// GetDocumentFile retrieves the file data for a document
func (s *Service) GetDocumentFile(id string) ([]byte, string, error) {
	document, err := s.db.GetDocument(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting document: %w", err)
	}

	data, err := s.storage.Get(document.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting document file: %w", err)
	}

	return data, document.ContentType, nil
}
