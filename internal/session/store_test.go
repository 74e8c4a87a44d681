package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/repository"
	"github.com/ghani250za/abdelghani-amrani/internal/utils"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func sample(at time.Time) model.Session {
	return model.Session{
		AuthToken:     "tok-123",
		CurrentUser:   model.UserProfile{UUID: "u-1", Name: "Doe Jane", Role: model.RoleStudent},
		AuthContext:   model.AuthContext{UUID: "u-1", UserID: 7},
		LastLoginTime: at,
	}
}

func TestFreshnessBoundary(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	c := &clock{t: start}
	kv := repository.NewMemoryKV()
	// keys must outlive the freshness window so the store is what expires them
	s := New(kv, "progres:c1", WithClock(c.Now))
	s.Save(ctx, sample(start))

	c.t = start.Add(23*time.Hour + 59*time.Minute)
	got, ok := s.Load(ctx)
	if !ok {
		t.Fatal("expected session at T+23h59m")
	}
	if got.AuthToken != "tok-123" || got.CurrentUser.Name != "Doe Jane" || got.AuthContext.UserID != 7 {
		t.Fatalf("unexpected session %+v", got)
	}
	if !got.LastLoginTime.Equal(start) {
		t.Fatalf("login time drifted: %v", got.LastLoginTime)
	}

	c.t = start.Add(24*time.Hour + time.Second)
	if _, ok := s.Load(ctx); ok {
		t.Fatal("expected no session at T+24h00m01s")
	}
	if kv.Len() != 0 {
		t.Fatalf("stale session not cleared, %d keys left", kv.Len())
	}
}

func TestExactlyTTLIsStale(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	c := &clock{t: start}
	kv := repository.NewMemoryKV()
	kv.Now = func() time.Time { return start }
	s := New(kv, "ns", WithClock(c.Now))
	s.Save(ctx, sample(start))

	c.t = start.Add(DefaultTTL)
	if _, ok := s.Load(ctx); ok {
		t.Fatal("a session exactly 24h old must be absent")
	}
}

func TestPartialSessionIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	_ = kv.Set(ctx, "ns:authToken", "tok", 0)
	if _, ok := New(kv, "ns").Load(ctx); ok {
		t.Fatal("partial session must read as absent")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := New(kv, "ns")
	s.Save(ctx, sample(time.Now()))
	s.Clear(ctx)
	s.Clear(ctx)
	if kv.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", kv.Len())
	}
	if _, ok := s.Load(ctx); ok {
		t.Fatal("expected no session after clear")
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	a := New(kv, "progres:a")
	b := New(kv, "progres:b")
	a.Save(ctx, sample(time.Now()))
	if _, ok := b.Load(ctx); ok {
		t.Fatal("client b must not see client a's session")
	}
	b.Clear(ctx)
	if _, ok := a.Load(ctx); !ok {
		t.Fatal("clearing b must not touch a")
	}
}

func TestSealedToken(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := New(kv, "ns", WithSealer(utils.NewSealer("secret")))
	s.Save(ctx, sample(time.Now()))

	stored, err := kv.Get(ctx, "ns:authToken")
	if err != nil || stored == "tok-123" {
		t.Fatalf("token stored in clear: %q %v", stored, err)
	}
	got, ok := s.Load(ctx)
	if !ok || got.AuthToken != "tok-123" {
		t.Fatalf("expected unsealed token, got %+v %v", got, ok)
	}

	// a different secret cannot read it and the entry is dropped
	other := New(kv, "ns", WithSealer(utils.NewSealer("rotated")))
	if _, ok := other.Load(ctx); ok {
		t.Fatal("expected absent with wrong secret")
	}
}

type brokenKV struct{}

var errDown = errors.New("down")

func (brokenKV) Get(context.Context, string) (string, error) {
	return "", errors.Join(repository.ErrUnavailable, errDown)
}
func (brokenKV) Set(context.Context, string, string, time.Duration) error { return errDown }
func (brokenKV) SetNX(context.Context, string, string) (bool, error)      { return false, errDown }
func (brokenKV) Delete(context.Context, ...string) error                  { return errDown }

func TestStorageFailuresFailOpen(t *testing.T) {
	ctx := context.Background()
	s := New(brokenKV{}, "ns")
	s.Save(ctx, sample(time.Now()))
	s.Clear(ctx)
	if _, ok := s.Load(ctx); ok {
		t.Fatal("expected absent when storage is down")
	}
}
