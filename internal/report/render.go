package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/selection"
)

// API is the part of the records client the renderers call.
type API interface {
	Enrollments(ctx context.Context, uuid string) ([]model.EnrollmentRecord, error)
	CCNotes(ctx context.Context, enrollmentID model.ID) ([]model.CCNote, error)
	ExamNotes(ctx context.Context, enrollmentID model.ID) ([]model.ExamNote, error)
	Schedule(ctx context.Context, enrollmentID model.ID) ([]model.ScheduleSession, error)
	PeriodBilans(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.PeriodBilan, error)
	Groups(ctx context.Context, enrollmentID model.ID) ([]model.GroupAssignment, error)
	YearlyBilan(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.YearlyBilan, error)
	SemesterSummaries(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.PeriodBilan, error)
}

// Request describes one report invocation against a selection snapshot.
type Request struct {
	Kind       Kind
	State      selection.State
	User       model.UserProfile
	SemesterID model.ID // zero: no semester picked yet
}

type Renderer struct {
	api API
	log *zap.Logger
}

func NewRenderer(api API, log *zap.Logger) *Renderer {
	return &Renderer{api: api, log: logger.OrNop(log)}
}

// Render guards the request and builds the fragment.  The error is non-nil
// only when the guard refuses; fetch failures come back as error fragments.
func (r *Renderer) Render(ctx context.Context, req Request) (Fragment, error) {
	if err := Guard(req.State, req.Kind); err != nil {
		return Fragment{}, err
	}
	enr := *req.State.Selected

	var (
		f   Fragment
		err error
	)
	switch req.Kind {
	case Grades:
		f, err = r.grades(ctx, req, enr)
	case Schedule:
		f, err = r.schedule(ctx, req, enr)
	case Bilan:
		f, err = r.bilan(ctx, req, enr)
	case SemesterSummary:
		f, err = r.summary(ctx, req, enr)
	case Groups:
		f, err = r.groups(ctx, enr)
	case YearlyBilan:
		f, err = r.yearly(ctx, req, enr)
	case StudentInfo:
		f, err = r.studentInfo(ctx, req)
	}
	if err != nil {
		r.log.Warn("report fetch failed", zap.String("kind", string(req.Kind)), zap.Int64("enrollment", int64(enr.ID)), zap.Error(err))
		return errorFragment(req.Kind, err), nil
	}
	f.Kind = req.Kind
	f.Title = req.Kind.Title()
	if f.Status == "" {
		f.Status = StatusOK
	}
	return f, nil
}

// pickSemester resolves the requested semester.  ok is false when none was
// requested; an unknown id is an error.
func pickSemester(req Request) (model.Semester, bool, error) {
	if req.SemesterID == 0 {
		return model.Semester{}, false, nil
	}
	sem, found := req.State.Semester(req.SemesterID)
	if !found {
		return model.Semester{}, false, fmt.Errorf("semester %d is not part of the selected academic year", req.SemesterID)
	}
	return sem, true, nil
}

func selectedOption(opts []SemesterOption) *SemesterOption {
	for i := range opts {
		if opts[i].Selected {
			return &opts[i]
		}
	}
	return nil
}

func (r *Renderer) grades(ctx context.Context, req Request, enr model.Enrollment) (Fragment, error) {
	sem, ok, err := pickSemester(req)
	if err != nil {
		return Fragment{}, err
	}
	view := GradesView{Semesters: semesterOptions(req.State.Semesters, req.SemesterID)}
	if !ok {
		return Fragment{Status: StatusPrompt, Prompt: "Please select a semester to view grades.", Body: view}, nil
	}
	view.Semester = selectedOption(view.Semesters)

	var (
		cc    []model.CCNote
		exams []model.ExamNote
		ccErr error
		exErr error
	)
	// each call has its own failure boundary; neither cancels the other
	var g errgroup.Group
	g.Go(func() error {
		cc, ccErr = r.api.CCNotes(ctx, enr.ID)
		return nil
	})
	g.Go(func() error {
		exams, exErr = r.api.ExamNotes(ctx, enr.ID)
		return nil
	})
	_ = g.Wait()

	if ccErr != nil {
		r.log.Warn("continuous assessment fetch failed", zap.Error(ccErr))
		view.Continuous.Error = "Error loading continuous assessment for this semester."
	} else {
		view.Continuous.Rows = ccRows(cc, sem)
		if len(view.Continuous.Rows) == 0 {
			view.Continuous.Empty = "No continuous assessment notes available for this semester."
		}
	}
	if exErr != nil {
		r.log.Warn("exam results fetch failed", zap.Error(exErr))
		view.Exams.Error = "Error loading exam results for this semester."
	} else {
		view.Exams.Rows = examRows(exams, sem)
		if len(view.Exams.Rows) == 0 {
			view.Exams.Empty = "No exam results available for this semester."
		}
	}
	return Fragment{Body: view}, nil
}

// ccRows keeps notes whose period label equals the semester name.
func ccRows(notes []model.CCNote, sem model.Semester) []CCRow {
	rows := []CCRow{}
	name := sem.Name()
	for _, n := range notes {
		if n.LlPeriode != name {
			continue
		}
		rows = append(rows, CCRow{
			Subject: n.Subject(),
			Note:    n.Note.String(),
			Class:   GradeClass(n.Note),
			Type:    model.FirstText("N/A", n.ApCode),
		})
	}
	return rows
}

// examRows keeps exams whose period id equals the semester id.
func examRows(exams []model.ExamNote, sem model.Semester) []ExamRow {
	rows := []ExamRow{}
	for _, e := range exams {
		if e.IDPeriode != sem.ID {
			continue
		}
		rows = append(rows, ExamRow{
			Subject:     e.Subject(),
			Note:        e.NoteExamen.String(),
			Class:       GradeClass(e.NoteExamen),
			Coefficient: e.Coef().String(),
		})
	}
	return rows
}

func (r *Renderer) schedule(ctx context.Context, req Request, enr model.Enrollment) (Fragment, error) {
	sem, ok, err := pickSemester(req)
	if err != nil {
		return Fragment{}, err
	}
	view := ScheduleView{Semesters: semesterOptions(req.State.Semesters, req.SemesterID)}
	if !ok {
		return Fragment{Status: StatusPrompt, Prompt: "Please select a semester to view schedule.", Body: view}, nil
	}
	view.Semester = selectedOption(view.Semesters)

	all, err := r.api.Schedule(ctx, enr.ID)
	if err != nil {
		return Fragment{}, err
	}
	var sessions []model.ScheduleSession
	for _, s := range all {
		if s.PeriodeID == sem.ID {
			sessions = append(sessions, s)
		}
	}
	if len(sessions) == 0 {
		view.Days = []DaySchedule{}
		view.Empty = "No schedule data available for this semester."
		return Fragment{Body: view}, nil
	}
	view.Days = groupByDay(sessions)
	view.Timetable = BuildTimetable(sessions)
	return Fragment{Body: view}, nil
}

func (r *Renderer) groups(ctx context.Context, enr model.Enrollment) (Fragment, error) {
	recs, err := r.api.Groups(ctx, enr.ID)
	if err != nil {
		return Fragment{}, err
	}
	view := GroupsView{Rows: make([]GroupRow, 0, len(recs))}
	for _, g := range recs {
		view.Rows = append(view.Rows, GroupRow{
			Semester: model.FirstText("N/A", g.PeriodeLibelleLongLt),
			Section:  model.FirstText("N/A", g.NomSection),
			Group:    model.FirstText("N/A", g.NomGroupePedagogique),
		})
	}
	if len(view.Rows) == 0 {
		view.Empty = "No groups information available."
	}
	return Fragment{Body: view}, nil
}

func (r *Renderer) yearly(ctx context.Context, req Request, enr model.Enrollment) (Fragment, error) {
	recs, err := r.api.YearlyBilan(ctx, req.User.UUID, enr.ID)
	if err != nil {
		return Fragment{}, err
	}
	if len(recs) == 0 {
		return Fragment{Body: YearlyView{Class: NA, ColorClass: GPAColorClass(NA), GPA: "N/A", Credits: "N/A", Empty: "No yearly bilan data available."}}, nil
	}
	y := recs[0]
	gpa := y.GPA()
	cls := GradeClass(gpa)
	return Fragment{Body: YearlyView{
		Found:      true,
		GPA:        gpa.String(),
		Class:      cls,
		ColorClass: GPAColorClass(cls),
		Credits:    y.Credits().String(),
	}}, nil
}

// studentInfo reads the personal fields from the first enrollment record
// as served now, not from the cached profile.
func (r *Renderer) studentInfo(ctx context.Context, req Request) (Fragment, error) {
	recs, err := r.api.Enrollments(ctx, req.User.UUID)
	if err != nil {
		return Fragment{}, err
	}
	if len(recs) == 0 {
		return Fragment{}, fmt.Errorf("no enrollment data for this student")
	}
	p := recs[0]
	return Fragment{Body: StudentInfoView{
		FirstName:    model.FirstText("N/A", p.IndividuPrenomLatin),
		LastName:     model.FirstText("N/A", p.IndividuNomLatin),
		DateOfBirth:  model.FirstText("N/A", p.IndividuDateNaissance),
		PlaceOfBirth: model.FirstText("N/A", p.IndividuLieuNaissance),
		Institution:  model.FirstText("N/A", p.LlEtablissementLatin),
		IDIndividu:   req.User.IDIndividu,
	}}, nil
}
