// Package selection tracks which enrollment is selected and whether its
// semesters are loaded.  Semester-scoped reports are only legal once the
// gate is open.
//
// State is a value: transitions return a new State and never mutate the
// receiver, so an owner can snapshot it under a lock, fetch without the lock
// and commit the result afterwards.
package selection

import (
	"fmt"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

type Phase int

const (
	NoEnrollment Phase = iota
	SemestersLoading
	SemestersReady
	SemestersError
)

func (p Phase) String() string {
	switch p {
	case SemestersLoading:
		return "semesters_loading"
	case SemestersReady:
		return "semesters_ready"
	case SemestersError:
		return "semesters_error"
	}
	return "no_enrollment"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// DisabledTitle is shown on gated actions while the gate is closed.
const DisabledTitle = "Please select an academic year first"

type State struct {
	Enrollments []model.Enrollment
	Selected    *model.Enrollment
	Semesters   []model.Semester
	Phase       Phase
	// RememberedID survives reloads of the enrollment list within one run.
	RememberedID model.ID
	// Generation increases on every selection change; a semester response
	// tagged with an older generation is discarded.
	Generation uint64
	Err        string
}

// GateOpen reports whether grades, schedule and bilan may be requested: the
// period load succeeded and returned at least one semester.
func (s State) GateOpen() bool {
	return s.Selected != nil && s.Phase == SemestersReady && len(s.Semesters) > 0
}

// HasEnrollment reports whether groups, yearly bilan and student info may be
// requested.
func (s State) HasEnrollment() bool { return s.Selected != nil }

func (s State) Find(id model.ID) (model.Enrollment, bool) {
	for _, e := range s.Enrollments {
		if e.ID == id {
			return e, true
		}
	}
	return model.Enrollment{}, false
}

func (s State) Semester(id model.ID) (model.Semester, bool) {
	for _, sem := range s.Semesters {
		if sem.ID == id {
			return sem, true
		}
	}
	return model.Semester{}, false
}

// StatusText is the semester banner message for the current phase.
func (s State) StatusText() string {
	switch s.Phase {
	case SemestersLoading:
		return "Loading semesters..."
	case SemestersReady:
		return fmt.Sprintf("✅ %d semesters loaded - You can now view grades and schedule", len(s.Semesters))
	case SemestersError:
		return "❌ Failed to load semesters"
	}
	return ""
}

func MapEnrollments(recs []model.EnrollmentRecord) []model.Enrollment {
	out := make([]model.Enrollment, len(recs))
	for i, r := range recs {
		out[i] = model.NewEnrollment(r, i)
	}
	return out
}

func MapSemesters(recs []model.PeriodRecord) []model.Semester {
	out := make([]model.Semester, len(recs))
	for i, r := range recs {
		out[i] = model.NewSemester(r)
	}
	return out
}

// WithEnrollments replaces the enrollment list and returns the id that
// should be selected next: the remembered id when it is still listed,
// otherwise the first (most recent) one.  ok is false for an empty list, in
// which case the state is already NoEnrollment.
func (s State) WithEnrollments(list []model.Enrollment) (next State, target model.ID, ok bool) {
	next = s
	next.Enrollments = list
	next.Err = ""
	if len(list) == 0 {
		next = next.Deselect()
		return next, 0, false
	}
	if s.RememberedID != 0 {
		if _, found := next.Find(s.RememberedID); found {
			return next, s.RememberedID, true
		}
	}
	return next, list[0].ID, true
}

// EnrollmentsFailed records a failed list fetch.
func (s State) EnrollmentsFailed(err error) State {
	next := s.Deselect()
	next.Enrollments = nil
	next.Err = "Error loading academic years"
	if err != nil {
		next.Err += ": " + err.Error()
	}
	return next
}

// Deselect clears the selection and the semesters and closes the gate.
func (s State) Deselect() State {
	next := s
	next.Selected = nil
	next.Semesters = nil
	next.Phase = NoEnrollment
	next.Generation++
	return next
}

// Begin starts selecting id.  An unknown id deselects.  For a known id the
// returned state is SemestersLoading with a fresh generation and loading is
// true; the caller then fetches periods for the enrollment's niveau and
// passes the result to Resolve with that generation.
func (s State) Begin(id model.ID) (next State, loading bool) {
	e, found := s.Find(id)
	if !found {
		return s.Deselect(), false
	}
	next = s
	sel := e
	next.Selected = &sel
	next.RememberedID = e.ID
	next.Semesters = nil
	next.Phase = SemestersLoading
	next.Err = ""
	next.Generation++
	return next, true
}

// Resolve applies a period response.  applied is false when gen is not the
// current generation, in which case s is returned unchanged.  Semesters are
// replaced, never merged.
func (s State) Resolve(gen uint64, recs []model.PeriodRecord, err error) (next State, applied bool) {
	if gen != s.Generation || s.Phase != SemestersLoading {
		return s, false
	}
	next = s
	if err != nil {
		next.Semesters = nil
		next.Phase = SemestersError
		next.Err = err.Error()
		return next, true
	}
	next.Semesters = MapSemesters(recs)
	next.Phase = SemestersReady
	next.Err = ""
	return next, true
}
