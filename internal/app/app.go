// Package app owns the per-client state: the session, the selection, the
// screen and the pager.  Every exported method takes the client's lock only
// to snapshot or commit; remote calls run unlocked, and a commit whose
// snapshot is older than the current generation is dropped.
package app

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/auth"
	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
	"github.com/ghani250za/abdelghani-amrani/internal/selection"
	"github.com/ghani250za/abdelghani-amrani/internal/service"
	"github.com/ghani250za/abdelghani-amrani/internal/session"
	"github.com/ghani250za/abdelghani-amrani/internal/view"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrStale is returned when the session changed while a call was in
	// flight and its result was discarded.
	ErrStale = errors.New("session changed during the request")
)

// Settings are the presentation knobs shared by every client.
type Settings struct {
	Breakpoint int           // widths below this get the pager
	Threshold  float64       // swipe threshold as a share of the width
	BannerTTL  time.Duration // banner auto-dismiss delay
	PublicURL  string        // target of the open-in-tab action
}

type App struct {
	id       string
	api      *progres.Client
	flow     *auth.Flow
	settings Settings
	log      *zap.Logger

	mu      sync.Mutex
	started bool
	sess    *model.Session
	// gen increases on login and logout so results fetched for a previous
	// session never land in the next one.
	gen    uint64
	sel    selection.State
	nav    view.Nav
	pager  view.Pager
	width  int
	banner *view.Banner
}

// New wires one client.  store is that client's namespaced session store.
func New(id string, api *progres.Client, store *session.Store, events service.Publisher, s Settings, log *zap.Logger) *App {
	log = logger.OrNop(log).With(zap.String("client", id))
	if events == nil {
		events = service.Nop{}
	}
	return &App{
		id:       id,
		api:      api,
		flow:     auth.NewFlow(api, store, auth.WithPublisher(events), auth.WithClientID(id), auth.WithLogger(log)),
		settings: s,
		log:      log,
		pager:    view.NewPager(len(report.Pages), s.Threshold),
		banner:   view.NewBanner(s.BannerTTL),
	}
}

func (a *App) ID() string { return a.id }

// Close stops the client's pending banner timer.  The persisted session is
// left alone.
func (a *App) Close() { a.banner.Cancel() }

// Start restores a persisted session the first time it is called and loads
// the enrollments for it.  Later calls only report the current state.
func (a *App) Start(ctx context.Context) SessionView {
	a.mu.Lock()
	if a.started {
		v := a.sessionViewLocked()
		a.mu.Unlock()
		return v
	}
	a.started = true
	gen := a.gen
	a.mu.Unlock()

	sess, ok := a.flow.Restore(ctx)
	if ok {
		a.mu.Lock()
		if a.gen == gen && a.sess == nil {
			a.beginSessionLocked(sess)
			gen = a.gen
		} else {
			ok = false
		}
		a.mu.Unlock()
	}
	if ok {
		if err := a.loadEnrollments(ctx, gen); err != nil {
			a.log.Warn("enrollments after restore failed", zap.Error(err))
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionViewLocked()
}

// Login exchanges credentials, moves to the dashboard and loads the
// enrollments.  On failure the screen stays on login with the message set.
func (a *App) Login(ctx context.Context, username, password string) (SessionView, error) {
	a.mu.Lock()
	a.started = true
	gen := a.gen
	a.mu.Unlock()

	sess, err := a.flow.Login(ctx, username, password)

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return SessionView{}, ErrStale
	}
	if err != nil {
		a.nav = a.nav.LoginFailed(err.Error())
		v := a.sessionViewLocked()
		a.mu.Unlock()
		return v, err
	}
	a.beginSessionLocked(sess)
	gen = a.gen
	a.mu.Unlock()

	if err := a.loadEnrollments(ctx, gen); err != nil {
		a.log.Warn("enrollments after login failed", zap.Error(err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionViewLocked(), nil
}

// Logout clears persisted and in-memory state and returns to login.
func (a *App) Logout(ctx context.Context) SessionView {
	a.mu.Lock()
	var sess model.Session
	if a.sess != nil {
		sess = *a.sess
	}
	a.resetLocked()
	a.mu.Unlock()

	a.flow.Logout(ctx, sess)

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionViewLocked()
}

func (a *App) beginSessionLocked(sess model.Session) {
	a.gen++
	a.sess = &sess
	// the remembered enrollment belongs to the previous user
	a.sel = selection.State{Generation: a.sel.Generation + 1}
	a.nav = a.nav.LoggedIn()
	a.pager = view.NewPager(len(report.Pages), a.settings.Threshold)
	a.banner.Cancel()
}

func (a *App) resetLocked() {
	a.gen++
	a.sess = nil
	a.sel = selection.State{Generation: a.sel.Generation + 1}
	a.nav = a.nav.LoggedOut()
	a.pager = view.NewPager(len(report.Pages), a.settings.Threshold)
	a.banner.Cancel()
}

// client returns the API client carrying the session token.
func (a *App) clientLocked() (*progres.Client, model.Session, error) {
	if a.sess == nil {
		return nil, model.Session{}, ErrNotLoggedIn
	}
	return a.api.WithToken(a.sess.AuthToken), *a.sess, nil
}

// Reload refetches the enrollment list, keeping the remembered selection
// when it is still listed.
func (a *App) Reload(ctx context.Context) error {
	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()
	return a.loadEnrollments(ctx, gen)
}

func (a *App) loadEnrollments(ctx context.Context, gen uint64) error {
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return ErrStale
	}
	api, sess, err := a.clientLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}

	recs, err := api.Enrollments(ctx, sess.CurrentUser.UUID)

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		a.sel = a.sel.EnrollmentsFailed(err)
		a.mu.Unlock()
		return err
	}
	next, target, ok := a.sel.WithEnrollments(selection.MapEnrollments(recs))
	a.sel = next
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.selectEnrollment(ctx, gen, target)
}

// SelectEnrollment switches the academic year and loads its semesters.  An
// id that is not listed deselects and closes the gate.
func (a *App) SelectEnrollment(ctx context.Context, id model.ID) error {
	a.mu.Lock()
	gen := a.gen
	loggedIn := a.sess != nil
	a.mu.Unlock()
	if !loggedIn {
		return ErrNotLoggedIn
	}
	return a.selectEnrollment(ctx, gen, id)
}

func (a *App) selectEnrollment(ctx context.Context, gen uint64, id model.ID) error {
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return ErrStale
	}
	api, _, err := a.clientLocked()
	if err != nil {
		a.mu.Unlock()
		return err
	}
	next, loading := a.sel.Begin(id)
	a.sel = next
	a.banner.Show(a.sel.StatusText())
	a.mu.Unlock()
	if !loading {
		return nil
	}

	recs, err := api.Periods(ctx, next.Selected.NiveauID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return ErrStale
	}
	resolved, applied := a.sel.Resolve(next.Generation, recs, err)
	if !applied {
		// a newer selection owns the state now
		a.log.Debug("stale semester response dropped", zap.Int64("enrollment", int64(id)))
		return ErrStale
	}
	a.sel = resolved
	a.banner.Show(a.sel.StatusText())
	if err != nil {
		a.log.Warn("semester load failed", zap.Int64("enrollment", int64(id)), zap.Error(err))
		return err
	}
	return nil
}

// Open navigates to report k and renders it.  The guard runs before any
// navigation; a refused report leaves the screen as it was.
func (a *App) Open(ctx context.Context, k report.Kind, semester model.ID) (report.Fragment, error) {
	a.mu.Lock()
	api, sess, err := a.clientLocked()
	if err != nil {
		a.mu.Unlock()
		return report.Fragment{}, err
	}
	if err := report.Guard(a.sel, k); err != nil {
		a.mu.Unlock()
		return report.Fragment{}, err
	}
	nav, _ := a.nav.Open(k)
	a.nav = nav
	if i := k.PageIndex(); i >= 0 {
		a.pager = a.pager.Jump(i)
	}
	a.banner.Cancel()
	req := report.Request{Kind: k, State: a.sel, User: sess.CurrentUser, SemesterID: semester}
	gen := a.gen
	a.mu.Unlock()

	f, err := report.NewRenderer(api, a.log).Render(ctx, req)
	if err != nil {
		return report.Fragment{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return report.Fragment{}, ErrStale
	}
	return f, nil
}

// Back returns to the dashboard.
func (a *App) Back() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nav = a.nav.Back()
	a.banner.Cancel()
	return a.viewStateLocked()
}

// SwipeEvent is one touch event of the narrow layout.
type SwipeEvent struct {
	Phase string  // start, move, end or settle
	X     float64 // finger position
	Width int     // viewport width
}

// Swipe feeds the pager.  Wide viewports ignore touch events.  A page turn
// on the content screen switches the shown report.
func (a *App) Swipe(ev SwipeEvent) (ViewState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ev.Width > 0 {
		a.width = ev.Width
	}
	if !view.Narrow(a.width, a.settings.Breakpoint) {
		return a.viewStateLocked(), nil
	}
	before := a.pager.Index
	switch ev.Phase {
	case "start":
		a.pager = a.pager.Start(ev.X, float64(a.width))
	case "move":
		a.pager = a.pager.Move(ev.X)
	case "end":
		a.pager = a.pager.End()
	case "settle":
		a.pager = a.pager.Settled()
	default:
		return a.viewStateLocked(), errors.New("unknown swipe phase " + ev.Phase)
	}
	if a.pager.Index != before {
		a.followPageLocked()
	}
	return a.viewStateLocked(), nil
}

// JumpTo is an indicator dot click.
func (a *App) JumpTo(i int) ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pager = a.pager.Jump(i)
	a.followPageLocked()
	return a.viewStateLocked()
}

func (a *App) followPageLocked() {
	if a.nav.Screen != view.Content {
		return
	}
	k := report.Pages[a.pager.Index]
	if report.Guard(a.sel, k) != nil {
		return
	}
	a.nav, _ = a.nav.Open(k)
}

// View reports the screen and pager.  width, when positive, updates the
// known viewport width.
func (a *App) View(width int) ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if width > 0 {
		a.width = width
	}
	return a.viewStateLocked()
}

// Dashboard is the dashboard view model.
func (a *App) Dashboard() (DashboardView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return DashboardView{}, ErrNotLoggedIn
	}
	return a.dashboardLocked(), nil
}

// Menu lists the host actions for a client of the given width and query.
func (a *App) Menu(width int, query url.Values) []view.MenuAction {
	return view.Menu(a.settings.PublicURL, view.WebMode(width, query))
}

// Selection returns a copy of the selection state.
func (a *App) Selection() selection.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sel
}
