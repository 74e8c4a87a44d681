package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an upstream identifier.  The records API sends ids as JSON numbers
// on most endpoints and as numeric strings on a few, so both decode here.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		*id = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("id %q: %w", s, err)
		}
		*id = ID(n)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n, err := f.Int64()
	if err != nil {
		return fmt.Errorf("id %s: %w", f, err)
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseID reads an id coming from a path or query parameter.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

// Mark is a grade-like value (note, average, coefficient, credits).  The API
// returns numbers, numeric strings, placeholder strings or null for the same
// field depending on the record; Mark keeps the text as received.
type Mark struct {
	Text    string
	Present bool
}

// NewMark builds a present mark from its display text.
func NewMark(text string) Mark { return Mark{Text: text, Present: true} }

func (m *Mark) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		*m = Mark{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Mark{Text: s, Present: true}
		return nil
	}
	// numbers keep their literal text so 12.50 is not shown as 12.5
	*m = Mark{Text: string(b), Present: true}
	return nil
}

func (m Mark) MarshalJSON() ([]byte, error) {
	if !m.Present {
		return []byte("null"), nil
	}
	return json.Marshal(m.Text)
}

// Float parses the mark as a number.  Decimal commas are accepted.
func (m Mark) Float() (float64, bool) {
	if !m.Present {
		return 0, false
	}
	s := strings.ReplaceAll(strings.TrimSpace(m.Text), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Empty reports whether the mark carries nothing worth displaying.
func (m Mark) Empty() bool { return !m.Present || strings.TrimSpace(m.Text) == "" }

// String returns the display text, "N/A" when absent.
func (m Mark) String() string {
	if m.Empty() {
		return "N/A"
	}
	return m.Text
}

// FirstMark returns the first non-empty mark, mirroring the fallback chains
// the API forces on readers (moyenne, then moyenneGeneraleAnnuelle, ...).
func FirstMark(marks ...Mark) Mark {
	for _, m := range marks {
		if !m.Empty() {
			return m
		}
	}
	return Mark{}
}

// FirstText returns the first non-blank string, or fallback.
func FirstText(fallback string, values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}
