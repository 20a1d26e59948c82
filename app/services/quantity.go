package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity decodes a JSON integer or a base-10 integer string. Anything
// else is kept as present-but-invalid instead of failing the whole decode,
// so the service can answer with a field error.
type Quantity struct {
	Value   int
	Present bool
	Valid   bool
}

// QuantityOf builds a valid, present Quantity.
func QuantityOf(n int) Quantity { return Quantity{Value: n, Present: true, Valid: true} }

func (q *Quantity) UnmarshalJSON(b []byte) error {
	q.Present = true
	q.Valid = false

	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	s := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	q.Value, q.Valid = n, true
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Present || !q.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(q.Value)), nil
}

// positive reports whether q holds an integer >= 1.
func (q Quantity) positive() bool { return q.Valid && q.Value >= 1 }
