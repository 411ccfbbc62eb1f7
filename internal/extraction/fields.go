package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes for extractor failures. Both degrade to the empty
// field set; the orchestrator logs them and keeps going.
var (
	// ErrUnreachable marks a network or non-2xx failure of the remote model.
	ErrUnreachable = errors.New("extractor unreachable")

	// ErrMalformed marks a reply that could not be recovered as JSON.
	ErrMalformed = errors.New("extractor reply malformed")
)

// Extractor turns acquired document text into a raw invoice field set.
// Implementations must return Empty() together with the error on any
// failure so callers always have a well-formed set to persist.
type Extractor interface {
	// ExtractFields sends text to the model identified by model and
	// recovers the structured field set from its reply.
	ExtractFields(ctx context.Context, text, model string) (FieldSet, error)

	// Close releases any resources held by the extractor
	Close() error
}

// Field is a loosely typed value from the model reply. It accepts a
// JSON string, number, or null and preserves the textual form so the
// normalizer can deal with whatever formatting the model produced.
type Field struct {
	value   string
	present bool
}

// NewField returns a non-null field holding value. Used by tests and
// by callers constructing field sets by hand.
func NewField(value string) Field {
	return Field{value: value, present: true}
}

// IsNull reports whether the model marked this field as absent.
func (f Field) IsNull() bool {
	return !f.present
}

// Value returns the raw textual value, or "" for a null field.
func (f Field) Value() string {
	return f.value
}

// Ptr returns the value as a *string, nil for a null field. Convenient
// when assembling the persisted record.
func (f Field) Ptr() *string {
	if !f.present {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON accepts a string, a number, or null. Anything else
// (arrays, objects, booleans) is an error, which the recovery layer
// treats as a malformed reply.
func (f *Field) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = Field{}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*f = Field{value: str, present: true}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*f = Field{value: num.String(), present: true}
		return nil
	}
	return fmt.Errorf("field value %s is neither string, number, nor null", s)
}

// MarshalJSON round-trips null fields as JSON null and everything else
// as a string.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.present {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// Confidence tolerates models that emit the confidence score as a
// quoted string instead of a number.
type Confidence struct {
	score   float64
	present bool
}

// NewConfidence returns a present confidence score.
func NewConfidence(score float64) Confidence {
	return Confidence{score: score, present: true}
}

// Score returns the confidence value and whether the model supplied one.
func (c Confidence) Score() (float64, bool) {
	return c.score, c.present
}

func (c *Confidence) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = Confidence{}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		v, convErr := num.Float64()
		if convErr != nil {
			return convErr
		}
		*c = Confidence{score: v, present: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("confidence_score %s is not a number", s)
	}
	var v float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(str)), &v); err != nil {
		return fmt.Errorf("confidence_score %q is not numeric", str)
	}
	*c = Confidence{score: v, present: true}
	return nil
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if !c.present {
		return []byte("null"), nil
	}
	return json.Marshal(c.score)
}

// FieldSet is the raw, unnormalized invoice data recovered from a model
// reply. Every canonical key is always present; absence is a null
// Field, never a missing key.
type FieldSet struct {
	InvoiceNumber   Field      `json:"invoice_number"`
	InvoiceDate     Field      `json:"invoice_date"`
	DueDate         Field      `json:"due_date"`
	TotalAmount     Field      `json:"total_amount"`
	VatAmount       Field      `json:"vat_amount"`
	Currency        Field      `json:"currency"`
	SupplierName    Field      `json:"supplier_name"`
	SupplierTaxID   Field      `json:"supplier_tax_id"`
	SupplierVatID   Field      `json:"supplier_vat_id"`
	CustomerName    Field      `json:"customer_name"`
	CustomerTaxID   Field      `json:"customer_tax_id"`
	CustomerVatID   Field      `json:"customer_vat_id"`
	ConfidenceScore Confidence `json:"confidence_score"`
}

// Empty returns the canonical fallback field set: all twelve invoice
// fields null and a confidence of 0.0.
func Empty() FieldSet {
	return FieldSet{ConfidenceScore: NewConfidence(0)}
}
