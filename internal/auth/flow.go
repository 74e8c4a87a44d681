// Package auth exchanges credentials for a session and restores or discards
// a persisted one.
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/queue"
	"github.com/ghani250za/abdelghani-amrani/internal/service"
	"github.com/ghani250za/abdelghani-amrani/internal/utils"
)

type Kind int

const (
	InvalidCredentials Kind = iota + 1
	NoEnrollmentData
)

// AuthError is returned by Login.  Err carries the underlying API error when
// there is one.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case InvalidCredentials:
		if ae, ok := progres.AsAPIError(e.Err); ok && ae.Kind == progres.KindNetwork {
			return ae.Error()
		}
		return "Invalid credentials"
	case NoEnrollmentData:
		if e.Err != nil {
			return "Failed to fetch student academic data: " + e.Err.Error()
		}
		return "No valid student enrollment data found"
	}
	return "Login failed. Please check your credentials."
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsKind reports whether err is an AuthError of kind k.
func IsKind(err error, k Kind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == k
}

// SessionStore is the persistence the flow needs; *session.Store satisfies it.
type SessionStore interface {
	Load(ctx context.Context) (model.Session, bool)
	Save(ctx context.Context, s model.Session)
	Clear(ctx context.Context)
}

type Flow struct {
	api      *progres.Client
	store    SessionStore
	events   service.Publisher
	clientID string
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Flow)

func WithPublisher(p service.Publisher) Option { return func(f *Flow) { f.events = p } }
func WithClientID(id string) Option            { return func(f *Flow) { f.clientID = id } }
func WithClock(now func() time.Time) Option    { return func(f *Flow) { f.now = now } }
func WithLogger(l *zap.Logger) Option          { return func(f *Flow) { f.log = logger.OrNop(l) } }

func NewFlow(api *progres.Client, store SessionStore, opts ...Option) *Flow {
	f := &Flow{api: api, store: store, events: service.Nop{}, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Login authenticates, builds the profile from the first enrollment record
// and persists the session.  Nothing is persisted when it fails.
func (f *Flow) Login(ctx context.Context, username, password string) (model.Session, error) {
	auth, err := f.api.Authenticate(ctx, username, password)
	if err != nil {
		f.log.Info("login rejected", zap.String("user", username), zap.Error(err))
		f.publish(ctx, queue.SessionEvent{Type: queue.EventLoginFailed, UserName: username, Reason: "credentials"})
		return model.Session{}, &AuthError{Kind: InvalidCredentials, Err: err}
	}

	api := f.api.WithToken(auth.Token)
	records, err := api.Enrollments(ctx, auth.UUID)
	if err != nil {
		f.log.Warn("enrollment fetch failed after login", zap.String("uuid", auth.UUID), zap.Error(err))
		f.publish(ctx, queue.SessionEvent{Type: queue.EventLoginFailed, UUID: auth.UUID, UserName: username, Reason: "enrollments"})
		return model.Session{}, &AuthError{Kind: NoEnrollmentData, Err: err}
	}
	if len(records) == 0 || records[0].IndividuNomLatin == "" {
		f.publish(ctx, queue.SessionEvent{Type: queue.EventLoginFailed, UUID: auth.UUID, UserName: username, Reason: "no enrollment"})
		return model.Session{}, &AuthError{Kind: NoEnrollmentData}
	}
	primary := records[0]

	// the photo is decoration; any failure leaves the profile without one
	var pic string
	if body, err := api.Image(ctx, auth.UUID); err != nil {
		f.log.Info("profile photo unavailable", zap.String("uuid", auth.UUID), zap.Error(err))
	} else {
		pic = PhotoDataURI(body)
	}

	now := f.now().UTC()
	sess := model.Session{
		AuthToken: auth.Token,
		CurrentUser: model.UserProfile{
			ID:               auth.UserID,
			UUID:             auth.UUID,
			IDIndividu:       auth.IDIndividu,
			UserName:         auth.UserName,
			Name:             primary.IndividuNomLatin + " " + primary.IndividuPrenomLatin,
			FirstName:        primary.IndividuPrenomLatin,
			LastName:         primary.IndividuNomLatin,
			DateOfBirth:      primary.IndividuDateNaissance,
			PlaceOfBirth:     primary.IndividuLieuNaissance,
			Role:             model.RoleStudent,
			EtablissementID:  auth.EtablissementID,
			Institution:      primary.LlEtablissementLatin,
			ProfilePic:       pic,
			LoginTimestamp:   now,
			TotalEnrollments: len(records),
		},
		AuthContext: model.AuthContext{
			UUID:            auth.UUID,
			UserID:          auth.UserID,
			IDIndividu:      auth.IDIndividu,
			EtablissementID: auth.EtablissementID,
			UserName:        auth.UserName,
			TokenExpiry:     utils.TokenExpiryPtr(auth.Token),
		},
		LastLoginTime: now,
	}
	f.store.Save(ctx, sess)

	f.log.Info("login succeeded", zap.String("uuid", auth.UUID), zap.Int("enrollments", len(records)))
	f.publish(ctx, queue.SessionEvent{
		Type:        queue.EventLogin,
		UUID:        auth.UUID,
		UserName:    sess.CurrentUser.Name,
		Institution: sess.CurrentUser.Institution,
		Enrollments: len(records),
	})
	return sess, nil
}

// Logout clears persisted state.  In-memory state is reset by the caller.
func (f *Flow) Logout(ctx context.Context, sess model.Session) {
	f.store.Clear(ctx)
	f.log.Info("logout", zap.String("uuid", sess.CurrentUser.UUID))
	f.publish(ctx, queue.SessionEvent{Type: queue.EventLogout, UUID: sess.CurrentUser.UUID, UserName: sess.CurrentUser.Name})
}

// Restore returns the persisted session when it is present and fresh.  A
// failure while checking degrades to "no session" and clears storage.
func (f *Flow) Restore(ctx context.Context) (sess model.Session, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("session restore panicked", zap.Any("panic", r))
			f.clearQuietly(ctx)
			sess, ok = model.Session{}, false
		}
	}()

	sess, ok = f.store.Load(ctx)
	if !ok {
		return model.Session{}, false
	}
	if sess.AuthContext.TokenExpiry != nil && !f.now().Before(*sess.AuthContext.TokenExpiry) {
		// advisory only: the API decides whether the token still works
		f.log.Warn("restored session token is past its expiry", zap.Time("expiry", *sess.AuthContext.TokenExpiry))
	}
	age := sess.Age(f.now())
	f.log.Info("session restored", zap.String("uuid", sess.CurrentUser.UUID), zap.Duration("age", age))
	f.publish(ctx, queue.SessionEvent{Type: queue.EventRestored, UUID: sess.CurrentUser.UUID, UserName: sess.CurrentUser.Name})
	return sess, true
}

func (f *Flow) clearQuietly(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("could not clear storage", zap.Any("panic", r))
		}
	}()
	f.store.Clear(ctx)
}

func (f *Flow) publish(ctx context.Context, ev queue.SessionEvent) {
	ev.ClientID = f.clientID
	ev.At = f.now().UTC().Format(time.RFC3339)
	if err := f.events.PublishSession(ctx, ev); err != nil {
		f.log.Debug("session event not published", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
