package app

import (
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
	"github.com/ghani250za/abdelghani-amrani/internal/selection"
	"github.com/ghani250za/abdelghani-amrani/internal/view"
)

type SessionView struct {
	Screen     view.Screen        `json:"screen"`
	LoggedIn   bool               `json:"loggedIn"`
	User       *model.UserProfile `json:"user,omitempty"`
	LoginError string             `json:"loginError,omitempty"`
}

type PagerView struct {
	Narrow bool            `json:"narrow"`
	Index  int             `json:"index"`
	Phase  view.SwipePhase `json:"phase"`
	Offset float64         `json:"offset"`
	Dots   []bool          `json:"dots"`
}

type ViewState struct {
	Screen view.Screen `json:"screen"`
	Kind   report.Kind `json:"kind,omitempty"`
	Title  string      `json:"title,omitempty"`
	Pager  PagerView   `json:"pager"`
}

type EnrollmentOption struct {
	ID       model.ID `json:"id"`
	Label    string   `json:"label"`
	Selected bool     `json:"selected"`
	Current  bool     `json:"current"`
}

// ReportAction is one dashboard button.
type ReportAction struct {
	Kind          report.Kind `json:"kind"`
	Title         string      `json:"title"`
	Enabled       bool        `json:"enabled"`
	DisabledTitle string      `json:"disabledTitle,omitempty"`
}

type DashboardView struct {
	User        model.UserProfile  `json:"user"`
	RoleLine    string             `json:"roleLine"`
	Enrollments []EnrollmentOption `json:"enrollments"`
	Selected    *model.Enrollment  `json:"selected,omitempty"`
	Semesters   []model.Semester   `json:"semesters"`
	Phase       selection.Phase    `json:"phase"`
	Gate        bool               `json:"gate"`
	Error       string             `json:"error,omitempty"`
	Banner      string             `json:"banner,omitempty"`
	Actions     []ReportAction     `json:"actions"`
}

func (a *App) sessionViewLocked() SessionView {
	v := SessionView{Screen: a.nav.Screen, LoggedIn: a.sess != nil, LoginError: a.nav.LoginError}
	if a.sess != nil {
		u := a.sess.CurrentUser
		v.User = &u
	}
	return v
}

func (a *App) viewStateLocked() ViewState {
	return ViewState{
		Screen: a.nav.Screen,
		Kind:   a.nav.Kind,
		Title:  a.nav.Title,
		Pager: PagerView{
			Narrow: view.Narrow(a.width, a.settings.Breakpoint),
			Index:  a.pager.Index,
			Phase:  a.pager.Phase,
			Offset: a.pager.Offset(),
			Dots:   a.pager.Dots(),
		},
	}
}

// dashboardKinds are the buttons in display order.
var dashboardKinds = []report.Kind{
	report.Grades, report.Schedule, report.Bilan, report.SemesterSummary,
	report.StudentInfo, report.Groups, report.YearlyBilan,
}

func (a *App) dashboardLocked() DashboardView {
	s := a.sel
	v := DashboardView{
		User:        a.sess.CurrentUser,
		RoleLine:    a.sess.CurrentUser.RoleLine(),
		Enrollments: make([]EnrollmentOption, 0, len(s.Enrollments)),
		Selected:    s.Selected,
		Semesters:   s.Semesters,
		Phase:       s.Phase,
		Gate:        s.GateOpen(),
		Error:       s.Err,
		Banner:      a.banner.Text(),
	}
	if v.Semesters == nil {
		v.Semesters = []model.Semester{}
	}
	for _, e := range s.Enrollments {
		v.Enrollments = append(v.Enrollments, EnrollmentOption{
			ID:       e.ID,
			Label:    e.OptionLabel(),
			Selected: s.Selected != nil && s.Selected.ID == e.ID,
			Current:  e.IsCurrentYear,
		})
	}
	for _, k := range dashboardKinds {
		act := ReportAction{Kind: k, Title: k.Title(), Enabled: report.Guard(s, k) == nil}
		if !act.Enabled {
			act.DisabledTitle = selection.DisabledTitle
		}
		v.Actions = append(v.Actions, act)
	}
	return v
}
