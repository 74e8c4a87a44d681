package report

import "github.com/ghani250za/abdelghani-amrani/internal/model"

type Status string

const (
	StatusOK     Status = "ok"
	StatusPrompt Status = "prompt"
	StatusError  Status = "error"
)

// BackPath is where the error block's button leads.
const BackPath = "/v1/view/back"

// ErrorBlock replaces a report body when its fetch failed.
type ErrorBlock struct {
	Message  string `json:"message"`
	Retry    bool   `json:"retry"`
	BackPath string `json:"backPath"`
}

// Fragment is what a content screen paints: a title and one body.
type Fragment struct {
	Kind   Kind        `json:"kind"`
	Title  string      `json:"title"`
	Status Status      `json:"status"`
	Prompt string      `json:"prompt,omitempty"`
	Error  *ErrorBlock `json:"error,omitempty"`
	Body   any         `json:"body,omitempty"`
}

func errorFragment(k Kind, err error) Fragment {
	msg := "An error occurred while loading data."
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Fragment{
		Kind:   k,
		Title:  k.Title(),
		Status: StatusError,
		Error:  &ErrorBlock{Message: msg, Retry: true, BackPath: BackPath},
	}
}

// SemesterOption is one entry of a semester picker.
type SemesterOption struct {
	ID       model.ID `json:"id"`
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Selected bool     `json:"selected"`
}

func semesterOptions(sems []model.Semester, selected model.ID) []SemesterOption {
	out := make([]SemesterOption, len(sems))
	for i, s := range sems {
		out[i] = SemesterOption{ID: s.ID, Name: s.Name(), Code: s.Code, Selected: s.ID == selected}
	}
	return out
}

type CCRow struct {
	Subject string `json:"subject"`
	Note    string `json:"note"`
	Class   Class  `json:"class"`
	Type    string `json:"type"`
}

type ExamRow struct {
	Subject     string `json:"subject"`
	Note        string `json:"note"`
	Class       Class  `json:"class"`
	Coefficient string `json:"coefficient"`
}

// Section is one independently loaded part of a view.  Error is set when
// its fetch failed; Empty when it succeeded with nothing to show.
type Section[T any] struct {
	Rows  []T    `json:"rows"`
	Error string `json:"error,omitempty"`
	Empty string `json:"empty,omitempty"`
}

type GradesView struct {
	Semesters  []SemesterOption `json:"semesters"`
	Semester   *SemesterOption  `json:"semester,omitempty"`
	Continuous Section[CCRow]   `json:"continuous"`
	Exams      Section[ExamRow] `json:"exams"`
}

type SessionRow struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Subject string `json:"subject"`
	Room    string `json:"room"`
	Type    string `json:"type"`
}

type DaySchedule struct {
	Day      string       `json:"day"`
	Sessions []SessionRow `json:"sessions"`
}

type TimetableCell struct {
	Subject string `json:"subject"`
	Room    string `json:"room"`
	Type    string `json:"type"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type TimetableRow struct {
	Label string           `json:"label"`
	Break bool             `json:"break"`
	Cells []*TimetableCell `json:"cells"`
}

type Timetable struct {
	Days []string       `json:"days"`
	Rows []TimetableRow `json:"rows"`
}

type ScheduleView struct {
	Semesters []SemesterOption `json:"semesters"`
	Semester  *SemesterOption  `json:"semester,omitempty"`
	Days      []DaySchedule    `json:"days"`
	Timetable *Timetable       `json:"timetable,omitempty"`
	Empty     string           `json:"empty,omitempty"`
}

type ModuleRow struct {
	Name        string `json:"name"`
	Average     string `json:"average"`
	Class       Class  `json:"class"`
	Coefficient string `json:"coefficient"`
}

type SemesterBilan struct {
	Semester     string      `json:"semester"`
	Found        bool        `json:"found"`
	Average      string      `json:"average"`
	AverageClass string      `json:"averageClass"`
	Credits      string      `json:"credits"`
	Modules      []ModuleRow `json:"modules"`
	Empty        string      `json:"empty,omitempty"`
}

type BilanView struct {
	Semesters []SemesterBilan `json:"semesters"`
}

type SummaryView struct {
	Semesters []SemesterOption `json:"semesters"`
	Semester  *SemesterOption  `json:"semester,omitempty"`
	Summary   *SemesterBilan   `json:"summary,omitempty"`
}

type GroupRow struct {
	Semester string `json:"semester"`
	Section  string `json:"section"`
	Group    string `json:"group"`
}

type GroupsView struct {
	Rows  []GroupRow `json:"rows"`
	Empty string     `json:"empty,omitempty"`
}

type YearlyView struct {
	Found      bool   `json:"found"`
	GPA        string `json:"gpa"`
	Class      Class  `json:"class"`
	ColorClass string `json:"colorClass"`
	Credits    string `json:"credits"`
	Empty      string `json:"empty,omitempty"`
}

type StudentInfoView struct {
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	DateOfBirth  string   `json:"dateOfBirth"`
	PlaceOfBirth string   `json:"placeOfBirth"`
	Institution  string   `json:"institution"`
	IDIndividu   model.ID `json:"idIndividu"`
}
