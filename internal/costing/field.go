package costing

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse failures are classified so the validation engine can phrase
// step-specific messages.
var (
	ErrNotANumber   = errors.New("value is not a number")
	ErrNegative     = errors.New("value is negative")
	ErrNotAnInteger = errors.New("value has a fractional part")
	ErrOutOfRange   = errors.New("value is outside 0-100")
)

// Number is an optional non-negative numeric input. A blank entry is
// "absent", which is distinct from an explicit zero; the formula engine
// resolves absent values to 0. The original typed string is retained so
// drafts, records, and backups round-trip entries exactly.
type Number struct {
	raw     string
	dec     decimal.Decimal
	present bool
}

// ParseNumber parses a user-entered string into a Number.
// "" (after trimming) parses as absent. Present values must be finite
// and >= 0.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, ErrNotANumber
	}
	if d.IsNegative() {
		return Number{}, ErrNegative
	}
	return Number{raw: s, dec: d, present: true}, nil
}

// Present reports whether the user entered a value.
func (n Number) Present() bool { return n.present }

// Raw returns the original typed string ("" when absent).
func (n Number) Raw() string { return n.raw }

// OrZero returns the value, resolving absent to 0.
func (n Number) OrZero() decimal.Decimal { return n.dec }

// MarshalJSON serializes the original string form.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.raw)
}

// UnmarshalJSON parses the stored string form.
func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseNumber(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Percent is an optional numeric input bounded to the closed range
// [0, 100]. Boundary values 0 and 100 are valid.
type Percent struct {
	Number
}

// ParsePercent parses a user-entered string into a Percent.
func ParsePercent(s string) (Percent, error) {
	n, err := ParseNumber(s)
	if err != nil {
		if errors.Is(err, ErrNegative) {
			return Percent{}, ErrOutOfRange
		}
		return Percent{}, err
	}
	if n.present && n.dec.GreaterThan(oneHundred) {
		return Percent{}, ErrOutOfRange
	}
	return Percent{n}, nil
}

// UnmarshalJSON parses the stored string form, enforcing the range.
func (p *Percent) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePercent(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Count is an optional non-negative integer input.
type Count struct {
	raw     string
	val     int64
	present bool
}

// ParseCount parses a user-entered string into a Count.
// The value must parse as a finite number >= 0 with no fractional part.
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Count{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Count{}, ErrNotANumber
	}
	if d.IsNegative() {
		return Count{}, ErrNegative
	}
	if !d.IsInteger() {
		return Count{}, ErrNotAnInteger
	}
	return Count{raw: s, val: d.IntPart(), present: true}, nil
}

// Present reports whether the user entered a value.
func (c Count) Present() bool { return c.present }

// Raw returns the original typed string ("" when absent).
func (c Count) Raw() string { return c.raw }

// OrZero returns the value, resolving absent to 0.
func (c Count) OrZero() int64 { return c.val }

// MarshalJSON serializes the original string form.
func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

// UnmarshalJSON parses the stored string form.
func (c *Count) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
