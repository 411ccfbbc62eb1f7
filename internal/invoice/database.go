package invoice

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	documentBucketName = "documents"
	recordBucketName   = "records"
)

// DB defines the interface for database operations
type DB interface {
	// SaveDocument saves a document to the database
	SaveDocument(document *Document) error

	// GetDocument retrieves a document by ID
	GetDocument(id string) (*Document, error)

	// ListDocuments returns all documents
	ListDocuments() ([]*Document, error)

	// DeleteDocument removes a document and its extraction record
	DeleteDocument(id string) error

	// SaveResult stores an extraction record and marks the document
	// processed in a single transaction
	SaveResult(record *Record) error

	// GetRecord retrieves the extraction record for a document
	GetRecord(documentID string) (*Record, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(documentBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(recordBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveDocument saves a document to the database
func (b *BoltDB) SaveDocument(document *Document) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucketName))
		data, err := json.Marshal(document)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}
		return bucket.Put([]byte(document.ID), data)
	})
}

// GetDocument retrieves a document by ID
func (b *BoltDB) GetDocument(id string) (*Document, error) {
	var document *Document
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return json.Unmarshal(data, &document)
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}

// ListDocuments returns all documents
func (b *BoltDB) ListDocuments() ([]*Document, error) {
	documents := make([]*Document, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var document Document
			if err := json.Unmarshal(v, &document); err != nil {
				return fmt.Errorf("unmarshaling document: %w", err)
			}
			documents = append(documents, &document)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// DeleteDocument removes a document and its extraction record
func (b *BoltDB) DeleteDocument(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(recordBucketName)).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket([]byte(documentBucketName)).Delete([]byte(id))
	})
}

// SaveResult stores an extraction record and marks the document processed.
// Both writes happen in one transaction so a record is never visible for a
// document that still reads as unprocessed, and vice versa.
func (b *BoltDB) SaveResult(record *Record) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		documents := tx.Bucket([]byte(documentBucketName))
		data := documents.Get([]byte(record.DocumentID))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, record.DocumentID)
		}
		var document Document
		if err := json.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("unmarshaling document: %w", err)
		}
		document.Processed = true
		updated, err := json.Marshal(&document)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}
		if err := documents.Put([]byte(document.ID), updated); err != nil {
			return err
		}

		recordData, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return tx.Bucket([]byte(recordBucketName)).Put([]byte(record.DocumentID), recordData)
	})
}

// GetRecord retrieves the extraction record for a document
func (b *BoltDB) GetRecord(documentID string) (*Record, error) {
	var record *Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucketName))
		data := bucket.Get([]byte(documentID))
		if data == nil {
			return fmt.Errorf("record not found: %s", documentID)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
