// Package report turns raw records API responses into the typed view models
// each content screen paints.  Report data is fetched fresh for every view
// and never cached.
package report

import (
	"errors"

	"github.com/ghani250za/abdelghani-amrani/internal/selection"
)

type Kind string

const (
	Grades          Kind = "grades"
	Schedule        Kind = "schedule"
	Bilan           Kind = "bilan"
	StudentInfo     Kind = "student-info"
	Groups          Kind = "groups"
	YearlyBilan     Kind = "yearly-bilan"
	SemesterSummary Kind = "semester-summary"
)

// Pages is the fixed order of the swipeable content pages.
var Pages = []Kind{Grades, Schedule, Bilan, StudentInfo, Groups, YearlyBilan}

var titles = map[Kind]string{
	Grades:          "Assessments & Exams",
	Schedule:        "Schedule",
	Bilan:           "Semester Summary",
	StudentInfo:     "Student Information",
	Groups:          "Groups",
	YearlyBilan:     "Yearly GPA",
	SemesterSummary: "Semester Summary",
}

func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := titles[k]
	return k, ok
}

func (k Kind) Title() string { return titles[k] }

// RequiresSemesters reports whether the report is semester-scoped and so
// needs the selection gate open.
func (k Kind) RequiresSemesters() bool {
	switch k {
	case Grades, Schedule, Bilan, SemesterSummary:
		return true
	}
	return false
}

// PageIndex is the report's position in Pages, or -1.
func (k Kind) PageIndex() int {
	for i, p := range Pages {
		if p == k {
			return i
		}
	}
	return -1
}

var (
	ErrNoEnrollment = errors.New(selection.DisabledTitle)
	ErrGateClosed   = errors.New("No semesters loaded. Please select an academic year first.")
	ErrUnknownKind  = errors.New("unknown report")
)

// Guard checks that the selection state allows requesting k.
func Guard(s selection.State, k Kind) error {
	if _, ok := titles[k]; !ok {
		return ErrUnknownKind
	}
	if !s.HasEnrollment() {
		return ErrNoEnrollment
	}
	if k.RequiresSemesters() && !s.GateOpen() {
		return ErrGateClosed
	}
	return nil
}
