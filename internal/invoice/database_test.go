package invoice

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveDocument", func() {
		var (
			document *Document
			err      error
		)

		BeforeEach(func() {
			document = &Document{
				ID:               "test-id",
				Filename:         "test-id_faktura.pdf",
				OriginalFilename: "faktura.pdf",
				ContentType:      "application/pdf",
				Size:             1024,
				UploadedAt:       time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveDocument(document)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the document to the database", func() {
				saved, getErr := db.GetDocument("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
			})
		})
	})

	Describe("GetDocument", func() {
		var (
			documentID string
			document   *Document
			err        error
		)

		JustBeforeEach(func() {
			document, err = db.GetDocument(documentID)
		})

		When("document exists", func() {
			BeforeEach(func() {
				documentID = "test-id"
				testDocument := &Document{
					ID:               "test-id",
					Filename:         "test-id_faktura.pdf",
					OriginalFilename: "faktura.pdf",
					ContentType:      "application/pdf",
					Size:             1024,
					UploadedAt:       time.Now(),
				}
				Expect(db.SaveDocument(testDocument)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the correct document ID", func() {
				Expect(document.ID).To(Equal("test-id"))
			})

			It("should return the correct original filename", func() {
				Expect(document.OriginalFilename).To(Equal("faktura.pdf"))
			})
		})

		When("document does not exist", func() {
			BeforeEach(func() {
				documentID = "nonexistent"
			})

			It("returns the not found error", func() {
				Expect(err).To(MatchError(ErrDocumentNotFound))
			})
		})
	})

	Describe("ListDocuments", func() {
		var (
			documents []*Document
			err       error
		)

		JustBeforeEach(func() {
			documents, err = db.ListDocuments()
		})

		When("documents exist", func() {
			BeforeEach(func() {
				doc1 := &Document{ID: "id1", OriginalFilename: "a.pdf", UploadedAt: time.Now()}
				doc2 := &Document{ID: "id2", OriginalFilename: "b.pdf", UploadedAt: time.Now()}
				Expect(db.SaveDocument(doc1)).NotTo(HaveOccurred())
				Expect(db.SaveDocument(doc2)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all documents", func() {
				Expect(documents).To(HaveLen(2))
			})
		})

		When("no documents exist", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an empty list", func() {
				Expect(documents).To(BeEmpty())
			})
		})
	})

	Describe("SaveResult", func() {
		var (
			record *Record
			err    error
		)

		BeforeEach(func() {
			number := "INV-2024-001"
			total := 1234.50
			record = &Record{
				DocumentID:      "test-id",
				InvoiceNumber:   &number,
				TotalAmount:     &total,
				RawText:         "Faktura c. INV-2024-001",
				Model:           "llama3",
				ConfidenceScore: 0.9,
				ProcessedAt:     time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveResult(record)
		})

		When("the document exists", func() {
			BeforeEach(func() {
				document := &Document{
					ID:          "test-id",
					ContentType: "application/pdf",
					UploadedAt:  time.Now(),
				}
				Expect(db.SaveDocument(document)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the record", func() {
				saved, getErr := db.GetRecord("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.InvoiceNumber).To(HaveValue(Equal("INV-2024-001")))
				Expect(saved.TotalAmount).To(HaveValue(Equal(1234.50)))
			})

			It("should mark the document processed", func() {
				saved, getErr := db.GetDocument("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Processed).To(BeTrue())
			})
		})

		When("the document does not exist", func() {
			It("returns the not found error", func() {
				Expect(err).To(MatchError(ErrDocumentNotFound))
			})

			It("saves no record", func() {
				_, getErr := db.GetRecord("test-id")
				Expect(getErr).To(HaveOccurred())
			})

			It("leaves the document bucket untouched", func() {
				_, getErr := db.GetDocument("test-id")
				Expect(getErr).To(MatchError(ErrDocumentNotFound))
			})
		})
	})

	Describe("GetRecord", func() {
		When("no record exists", func() {
			It("returns an error", func() {
				_, err := db.GetRecord("nonexistent")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("DeleteDocument", func() {
		var (
			documentID string
			err        error
		)

		JustBeforeEach(func() {
			err = db.DeleteDocument(documentID)
		})

		When("document and record exist", func() {
			BeforeEach(func() {
				documentID = "test-id"
				document := &Document{
					ID:         "test-id",
					UploadedAt: time.Now(),
				}
				Expect(db.SaveDocument(document)).NotTo(HaveOccurred())
				Expect(db.SaveResult(&Record{
					DocumentID:  "test-id",
					ProcessedAt: time.Now(),
				})).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the document", func() {
				_, getErr := db.GetDocument("test-id")
				Expect(getErr).To(HaveOccurred())
			})

			It("should remove the record", func() {
				_, getErr := db.GetRecord("test-id")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("document does not exist", func() {
			BeforeEach(func() {
				documentID = "nonexistent"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			err := db.Close()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
