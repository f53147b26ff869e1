package goldlog

import (
	"errors"
	"fmt"
	"strings"
)

// Purchase is one recorded purchase.
//
// All values are free-form text, they are displayed as entered. Price is per
// gram and Quantity in grams, but nothing enforces a numeric format.
type Purchase struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// Field names one of the user editable values of a Purchase.
type Field string

const (
	FieldDate     Field = "date"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldDate, FieldPrice, FieldQuantity}

// ParseField returns the Field named s.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q: must be one of date, price, quantity", s)
}

var (
	ErrValidation    = errors.New("invalid purchase")
	ErrHydration     = errors.New("cannot load purchases")
	ErrPersistence   = errors.New("cannot save purchases")
	ErrNotReady      = errors.New("purchases are not loaded yet")
	ErrAlreadyLoaded = errors.New("purchases have already been loaded")
)

// ValidationError lists the required fields that are blank.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("%v: missing %s", ErrValidation, strings.Join(names, ", "))
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks that date, price and quantity are not blank.
// Surrounding whitespace is ignored for the check only.
func (p Purchase) Validate() error {
	var missing []Field
	for _, f := range Fields {
		if strings.TrimSpace(p.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Get returns the value of field f.
func (p Purchase) Get(f Field) string {
	switch f {
	case FieldDate:
		return p.Date
	case FieldPrice:
		return p.Price
	case FieldQuantity:
		return p.Quantity
	}
	return ""
}
