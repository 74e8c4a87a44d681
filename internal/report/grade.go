package report

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// Class buckets a mark for coloring.
type Class string

const (
	Excellent Class = "excellent"
	Good      Class = "good"
	Average   Class = "average"
	Poor      Class = "poor"
	NA        Class = "na"
)

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)`)

// GradeClass buckets v: >=16 excellent, >=14 good, >=10 average, below that
// poor.  Absent values, "N/A" and text without a leading number are na.  A
// string counts by its leading number, so "12.5/20" is average.
func GradeClass(v any) Class {
	f, ok := numeric(v)
	if !ok {
		return NA
	}
	switch {
	case f >= 16:
		return Excellent
	case f >= 14:
		return Good
	case f >= 10:
		return Average
	}
	return Poor
}

// GPAColorClass is the style applied to averages; na renders as average.
func GPAColorClass(c Class) string {
	if c == NA {
		return "gpa-average"
	}
	return "gpa-" + string(c)
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		return parseLeading(string(x))
	case model.Mark:
		if x.Empty() {
			return 0, false
		}
		return parseLeading(x.Text)
	case *model.Mark:
		if x == nil {
			return 0, false
		}
		return numeric(*x)
	case string:
		return parseLeading(x)
	}
	return 0, false
}

func parseLeading(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	m := leadingNumber.FindString(strings.Replace(s, ",", ".", 1))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
