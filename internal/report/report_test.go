package report

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/selection"
)

type fakeAPI struct {
	enrollments []model.EnrollmentRecord
	cc          []model.CCNote
	ccErr       error
	exams       []model.ExamNote
	examErr     error
	schedule    []model.ScheduleSession
	bilans      []model.PeriodBilan
	summaries   []model.PeriodBilan
	groups      []model.GroupAssignment
	yearly      []model.YearlyBilan
	yearlyErr   error

	calls atomic.Int32
}

func (f *fakeAPI) Enrollments(context.Context, string) ([]model.EnrollmentRecord, error) {
	f.calls.Add(1)
	return f.enrollments, nil
}

func (f *fakeAPI) CCNotes(context.Context, model.ID) ([]model.CCNote, error) {
	f.calls.Add(1)
	return f.cc, f.ccErr
}

func (f *fakeAPI) ExamNotes(context.Context, model.ID) ([]model.ExamNote, error) {
	f.calls.Add(1)
	return f.exams, f.examErr
}

func (f *fakeAPI) Schedule(context.Context, model.ID) ([]model.ScheduleSession, error) {
	f.calls.Add(1)
	return f.schedule, nil
}

func (f *fakeAPI) PeriodBilans(context.Context, string, model.ID) ([]model.PeriodBilan, error) {
	f.calls.Add(1)
	return f.bilans, nil
}

func (f *fakeAPI) Groups(context.Context, model.ID) ([]model.GroupAssignment, error) {
	f.calls.Add(1)
	return f.groups, nil
}

func (f *fakeAPI) YearlyBilan(context.Context, string, model.ID) ([]model.YearlyBilan, error) {
	f.calls.Add(1)
	return f.yearly, f.yearlyErr
}

func (f *fakeAPI) SemesterSummaries(context.Context, string, model.ID) ([]model.PeriodBilan, error) {
	f.calls.Add(1)
	return f.summaries, nil
}

// readyState has enrollment 1 selected with semesters S5 (101) and S6 (102).
func readyState(t *testing.T) selection.State {
	t.Helper()
	var s selection.State
	s, target, ok := s.WithEnrollments([]model.Enrollment{{ID: 1, NiveauID: 10, DisplayName: "2024/2025 - Info"}})
	if !ok {
		t.Fatal("expected an enrollment")
	}
	s, _ = s.Begin(target)
	s, applied := s.Resolve(s.Generation, []model.PeriodRecord{
		{ID: 101, Code: "S5", LibelleLongLt: "Semestre 5"},
		{ID: 102, Code: "S6", LibelleLongLt: "Semestre 6"},
	}, nil)
	if !applied || !s.GateOpen() {
		t.Fatal("gate should be open")
	}
	return s
}

func render(t *testing.T, api *fakeAPI, req Request) Fragment {
	t.Helper()
	f, err := NewRenderer(api, nil).Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render %s: %v", req.Kind, err)
	}
	return f
}

func TestGradeClassBoundaries(t *testing.T) {
	cases := []struct {
		in   any
		want Class
	}{
		{16.0, Excellent},
		{15.99, Good},
		{14, Good},
		{13.99, Average},
		{"10", Average},
		{"9.99", Poor},
		{"N/A", NA},
		{nil, NA},
		{"abs", NA},
		{"12.5/20", Average},
		{model.NewMark("17,5"), Excellent},
		{model.Mark{}, NA},
	}
	for _, c := range cases {
		if got := GradeClass(c.in); got != c.want {
			t.Errorf("GradeClass(%v) = %s, want %s", c.in, got, c.want)
		}
	}
	if GPAColorClass(NA) != "gpa-average" || GPAColorClass(Good) != "gpa-good" {
		t.Fatal("unexpected gpa color classes")
	}
}

func TestGuardRefusesWithoutGate(t *testing.T) {
	api := &fakeAPI{}
	r := NewRenderer(api, nil)

	var empty selection.State
	if _, err := r.Render(context.Background(), Request{Kind: Groups, State: empty}); !errors.Is(err, ErrNoEnrollment) {
		t.Fatalf("expected ErrNoEnrollment, got %v", err)
	}

	s, target, _ := empty.WithEnrollments([]model.Enrollment{{ID: 1}})
	s, _ = s.Begin(target)
	for _, k := range []Kind{Grades, Schedule, Bilan, SemesterSummary} {
		if _, err := r.Render(context.Background(), Request{Kind: k, State: s}); !errors.Is(err, ErrGateClosed) {
			t.Fatalf("%s: expected ErrGateClosed, got %v", k, err)
		}
	}
	if api.calls.Load() != 0 {
		t.Fatalf("no fetch may happen behind a closed gate, got %d", api.calls.Load())
	}

	// a successful load with no semesters keeps the gate closed
	noSems, _ := s.Resolve(s.Generation, []model.PeriodRecord{}, nil)
	for _, k := range []Kind{Grades, Schedule, Bilan, SemesterSummary} {
		if err := Guard(noSems, k); !errors.Is(err, ErrGateClosed) {
			t.Fatalf("%s with zero semesters: expected ErrGateClosed, got %v", k, err)
		}
	}
	if err := Guard(noSems, YearlyBilan); err != nil {
		t.Fatalf("yearly bilan only needs an enrollment: %v", err)
	}

	// enrollment-scoped reports only need a selection
	if _, err := r.Render(context.Background(), Request{Kind: Groups, State: s}); err != nil {
		t.Fatalf("groups should render while semesters load: %v", err)
	}
	if _, err := r.Render(context.Background(), Request{Kind: "nope", State: s}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestGradesPromptWithoutSemester(t *testing.T) {
	api := &fakeAPI{}
	f := render(t, api, Request{Kind: Grades, State: readyState(t)})
	if f.Status != StatusPrompt || f.Prompt != "Please select a semester to view grades." {
		t.Fatalf("unexpected fragment %+v", f)
	}
	if api.calls.Load() != 0 {
		t.Fatal("prompt must not fetch")
	}
	view := f.Body.(GradesView)
	if len(view.Semesters) != 2 || view.Semesters[0].Name != "Semestre 5" {
		t.Fatalf("unexpected options %+v", view.Semesters)
	}
}

func TestGradesFilterBySemester(t *testing.T) {
	api := &fakeAPI{
		cc: []model.CCNote{
			{LlPeriode: "Semestre 5", McLibelleFr: "Algo", Note: model.NewMark("15"), ApCode: "TD"},
			{LlPeriode: "Semestre 6", McLibelleFr: "Réseaux", Note: model.NewMark("11")},
		},
		exams: []model.ExamNote{
			{IDPeriode: 101, McLibelleFr: "Algo", NoteExamen: model.NewMark("8.5"), Coefficient: model.NewMark("3")},
			{IDPeriode: 102, McLibelleFr: "Réseaux", NoteExamen: model.NewMark("12")},
		},
	}
	f := render(t, api, Request{Kind: Grades, State: readyState(t), SemesterID: 101})
	view := f.Body.(GradesView)
	if f.Title != "Assessments & Exams" || view.Semester == nil || view.Semester.ID != 101 {
		t.Fatalf("unexpected header %q %+v", f.Title, view.Semester)
	}
	if len(view.Continuous.Rows) != 1 || view.Continuous.Rows[0].Class != Good || view.Continuous.Rows[0].Type != "TD" {
		t.Fatalf("unexpected cc rows %+v", view.Continuous.Rows)
	}
	if len(view.Exams.Rows) != 1 || view.Exams.Rows[0].Class != Poor || view.Exams.Rows[0].Coefficient != "3" {
		t.Fatalf("unexpected exam rows %+v", view.Exams.Rows)
	}
}

func TestGradesSectionsFailIndependently(t *testing.T) {
	api := &fakeAPI{
		ccErr: errors.New("boom"),
		exams: []model.ExamNote{{IDPeriode: 101, McLibelleFr: "Algo", NoteExamen: model.NewMark("16")}},
	}
	f := render(t, api, Request{Kind: Grades, State: readyState(t), SemesterID: 101})
	if f.Status != StatusOK {
		t.Fatalf("one failed section must not fail the view: %+v", f)
	}
	view := f.Body.(GradesView)
	if view.Continuous.Error != "Error loading continuous assessment for this semester." {
		t.Fatalf("unexpected cc error %q", view.Continuous.Error)
	}
	if len(view.Exams.Rows) != 1 || view.Exams.Rows[0].Class != Excellent {
		t.Fatalf("exams should still render: %+v", view.Exams)
	}

	api = &fakeAPI{examErr: errors.New("boom")}
	view = render(t, api, Request{Kind: Grades, State: readyState(t), SemesterID: 102}).Body.(GradesView)
	if view.Continuous.Empty != "No continuous assessment notes available for this semester." {
		t.Fatalf("unexpected cc empty %q", view.Continuous.Empty)
	}
	if view.Exams.Error != "Error loading exam results for this semester." {
		t.Fatalf("unexpected exam error %q", view.Exams.Error)
	}
}

func TestUnknownSemesterIsErrorFragment(t *testing.T) {
	f := render(t, &fakeAPI{}, Request{Kind: Grades, State: readyState(t), SemesterID: 999})
	if f.Status != StatusError || f.Error == nil || !f.Error.Retry || f.Error.BackPath != BackPath {
		t.Fatalf("unexpected fragment %+v", f)
	}
}

func TestScheduleGroupingAndTimetable(t *testing.T) {
	api := &fakeAPI{schedule: []model.ScheduleSession{
		{PeriodeID: 101, JourLibelleFr: "Lundi", PlageHoraireHeureDebut: "14:00", PlageHoraireHeureFin: "15:30", Matiere: "Algo", RefLieuDesignation: "A1", Ap: "TD"},
		{PeriodeID: 101, JourLibelleFr: "Dimanche", PlageHoraireHeureDebut: "09:45", Matiere: "Maths"},
		{PeriodeID: 101, JourLibelleFr: "Lundi", PlageHoraireHeureDebut: "08:00", Matiere: "Web"},
		{PeriodeID: 101, JourLibelleFr: "Lundi", PlageHoraireHeureDebut: "08:30", Matiere: "Later"},
		{PeriodeID: 102, JourLibelleFr: "Mardi", PlageHoraireHeureDebut: "08:00", Matiere: "Other"},
	}}
	f := render(t, api, Request{Kind: Schedule, State: readyState(t), SemesterID: 101})
	view := f.Body.(ScheduleView)

	if len(view.Days) != 2 || view.Days[0].Day != "Dimanche" || view.Days[1].Day != "Lundi" {
		t.Fatalf("unexpected day order %+v", view.Days)
	}
	lundi := view.Days[1].Sessions
	if len(lundi) != 3 || lundi[0].Subject != "Web" || lundi[2].Subject != "Algo" {
		t.Fatalf("unexpected lundi order %+v", lundi)
	}
	if view.Days[0].Sessions[0].Room != "N/A" {
		t.Fatalf("missing room should be N/A, got %q", view.Days[0].Sessions[0].Room)
	}

	tt := view.Timetable
	if len(tt.Rows) != 6 || len(tt.Days) != 6 || !tt.Rows[3].Break {
		t.Fatalf("unexpected grid shape %+v", tt)
	}
	// 08:30 shares the 08 hour with Web and replaces it
	if c := tt.Rows[0].Cells[1]; c == nil || c.Subject != "Later" {
		t.Fatalf("unexpected lundi 08:00 cell %+v", c)
	}
	if c := tt.Rows[1].Cells[0]; c == nil || c.Subject != "Maths" {
		t.Fatalf("unexpected dimanche 09:45 cell %+v", c)
	}
	if c := tt.Rows[4].Cells[1]; c == nil || c.Room != "A1" {
		t.Fatalf("unexpected lundi 14:00 cell %+v", c)
	}
	for _, c := range tt.Rows[3].Cells {
		if c != nil {
			t.Fatal("break row must stay empty")
		}
	}
}

func TestScheduleEmpty(t *testing.T) {
	api := &fakeAPI{schedule: []model.ScheduleSession{{PeriodeID: 102, JourLibelleFr: "Lundi"}}}
	view := render(t, api, Request{Kind: Schedule, State: readyState(t), SemesterID: 101}).Body.(ScheduleView)
	if view.Empty != "No schedule data available for this semester." || view.Timetable != nil {
		t.Fatalf("unexpected empty view %+v", view)
	}
}

func TestMatchSlot(t *testing.T) {
	cases := map[string]int{
		"08:00":               0,
		"8:15":                0,
		"09:45:00":            1,
		"2024-10-01T11:30:00": 2,
		"14:00":               4,
		"15:45":               5,
		"18:00":               -1,
		"":                    -1,
	}
	for in, want := range cases {
		if got := matchSlot(in); got != want {
			t.Errorf("matchSlot(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestBilanModulesBySemesterSuffix(t *testing.T) {
	api := &fakeAPI{bilans: []model.PeriodBilan{
		{
			PeriodeLibelleFr: "Semestre 5", Moyenne: model.NewMark("14.25"), CreditAcquis: model.NewMark("30"),
			BilanUes: []model.UEBilan{
				{UELibelleAr: "وحدة أساسية S5", BilanMcs: []model.MCBilan{{McLibelleFr: "Algo", MoyenneGenerale: model.NewMark("16"), Coefficient: model.NewMark("4")}}},
				{UELibelleAr: "وحدة منهجية S6", BilanMcs: []model.MCBilan{{McLibelleFr: "Web"}}},
			},
		},
		{
			PeriodeID: 102, Moyenne: model.NewMark("9"),
			BilanUes: []model.UEBilan{{UELibelleAr: "وحدة S5", BilanMcs: []model.MCBilan{{McLibelleFr: "Stats"}}}},
		},
	}}
	f := render(t, api, Request{Kind: Bilan, State: readyState(t)})
	if api.calls.Load() != 1 {
		t.Fatalf("bilan must be fetched once, got %d", api.calls.Load())
	}
	view := f.Body.(BilanView)
	if len(view.Semesters) != 2 {
		t.Fatalf("expected two semesters, got %d", len(view.Semesters))
	}
	s5 := view.Semesters[0]
	if !s5.Found || s5.Average != "14.25" || s5.AverageClass != "gpa-good" || s5.Credits != "30" {
		t.Fatalf("unexpected s5 %+v", s5)
	}
	if len(s5.Modules) != 2 || s5.Modules[0].Name != "Algo" || s5.Modules[1].Name != "Stats" {
		t.Fatalf("modules should span all bilans: %+v", s5.Modules)
	}
	s6 := view.Semesters[1]
	if !s6.Found || s6.AverageClass != "gpa-poor" || s6.Credits != "N/A" {
		t.Fatalf("s6 should match by id: %+v", s6)
	}
	if len(s6.Modules) != 1 || s6.Modules[0].Name != "Web" {
		t.Fatalf("unexpected s6 modules %+v", s6.Modules)
	}
}

func TestBilanMissingSemester(t *testing.T) {
	view := render(t, &fakeAPI{}, Request{Kind: Bilan, State: readyState(t)}).Body.(BilanView)
	for _, s := range view.Semesters {
		if s.Found || s.Empty != "No bilan data available for this semester." {
			t.Fatalf("unexpected %+v", s)
		}
	}
}

func TestSummaryFallbacks(t *testing.T) {
	api := &fakeAPI{summaries: []model.PeriodBilan{{
		PeriodeID:       101,
		MoyenneGenerale: model.NewMark("12"),
		BilanUes: []model.UEBilan{{
			Coefficient: model.NewMark("5"),
			BilanMcs: []model.MCBilan{
				{McLibelleAr: "تحليل", MoyenneGenerale: model.NewMark("11")},
				{Coefficient: model.NewMark("2")},
			},
		}},
	}}}
	f := render(t, api, Request{Kind: SemesterSummary, State: readyState(t), SemesterID: 101})
	sum := f.Body.(SummaryView).Summary
	if sum == nil || !sum.Found || sum.Average != "12" || sum.Credits != "30" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Modules[0].Name != "تحليل" || sum.Modules[0].Coefficient != "5" {
		t.Fatalf("unexpected first module %+v", sum.Modules[0])
	}
	if sum.Modules[1].Name != "Unknown Module" || sum.Modules[1].Average != "N/A" || sum.Modules[1].Coefficient != "2" {
		t.Fatalf("unexpected second module %+v", sum.Modules[1])
	}

	api.summaries[0].CreditsAcquis = model.NewMark("24")
	sum = render(t, api, Request{Kind: SemesterSummary, State: readyState(t), SemesterID: 101}).Body.(SummaryView).Summary
	if sum.Credits != "24" {
		t.Fatalf("expected reported credits, got %q", sum.Credits)
	}
}

func TestYearlyAndGroups(t *testing.T) {
	api := &fakeAPI{
		yearly: []model.YearlyBilan{{MoyenneGeneraleAnnuelle: model.NewMark("16.1"), CreditsObtenus: model.NewMark("60")}},
		groups: []model.GroupAssignment{{PeriodeLibelleLongLt: "Semestre 5", NomSection: "A"}},
	}
	s := readyState(t)
	y := render(t, api, Request{Kind: YearlyBilan, State: s}).Body.(YearlyView)
	if !y.Found || y.GPA != "16.1" || y.ColorClass != "gpa-excellent" || y.Credits != "60" {
		t.Fatalf("unexpected yearly %+v", y)
	}
	g := render(t, api, Request{Kind: Groups, State: s}).Body.(GroupsView)
	if len(g.Rows) != 1 || g.Rows[0].Group != "N/A" {
		t.Fatalf("unexpected groups %+v", g)
	}

	api = &fakeAPI{}
	y = render(t, api, Request{Kind: YearlyBilan, State: s}).Body.(YearlyView)
	if y.Found || y.Empty != "No yearly bilan data available." {
		t.Fatalf("unexpected empty yearly %+v", y)
	}
	g = render(t, api, Request{Kind: Groups, State: s}).Body.(GroupsView)
	if g.Empty != "No groups information available." {
		t.Fatalf("unexpected empty groups %+v", g)
	}

	api = &fakeAPI{yearlyErr: errors.New("API Error 500: Internal Server Error - oops")}
	f := render(t, api, Request{Kind: YearlyBilan, State: s})
	if f.Status != StatusError || f.Error.Message != "API Error 500: Internal Server Error - oops" {
		t.Fatalf("unexpected error fragment %+v", f)
	}
}

func TestStudentInfoUsesFirstRecord(t *testing.T) {
	api := &fakeAPI{enrollments: []model.EnrollmentRecord{
		{IndividuPrenomLatin: "Jane", IndividuNomLatin: "Doe", LlEtablissementLatin: "USTHB"},
		{IndividuPrenomLatin: "Old"},
	}}
	f := render(t, api, Request{Kind: StudentInfo, State: readyState(t), User: model.UserProfile{UUID: "u", IDIndividu: 77}})
	v := f.Body.(StudentInfoView)
	if f.Title != "Student Information" || v.FirstName != "Jane" || v.DateOfBirth != "N/A" || v.IDIndividu != 77 {
		t.Fatalf("unexpected info %q %+v", f.Title, v)
	}
}

func TestPagesAndTitles(t *testing.T) {
	if StudentInfo.PageIndex() != 3 || Grades.PageIndex() != 0 || SemesterSummary.PageIndex() != -1 {
		t.Fatal("unexpected page indexes")
	}
	if k, ok := ParseKind("yearly-bilan"); !ok || k.Title() != "Yearly GPA" {
		t.Fatalf("unexpected parse %v %v", k, ok)
	}
}
