package app

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/repository"
	"github.com/ghani250za/abdelghani-amrani/internal/service"
	"github.com/ghani250za/abdelghani-amrani/internal/session"
)

// Defaults for NewRegistry's eviction policy.
const (
	DefaultMaxClients = 10000
	DefaultClientIdle = 30 * time.Minute
)

// Registry hands out one App per client id.  Each client's session lives
// under its own key namespace "<prefix>:client:<id>".
//
// Apps are kept in least-recently-used order.  Past MaxClients the oldest is
// dropped, and Sweep drops those idle longer than Idle.  A dropped client
// keeps its persisted session; its next /v1/session restores it.
type Registry struct {
	API        *progres.Client
	KV         repository.KV
	Prefix     string
	StoreOpts  []session.Option
	Events     service.Publisher
	Settings   Settings
	Log        *zap.Logger
	MaxClients int
	Idle       time.Duration

	now  func() time.Time
	mu   sync.Mutex
	lru  *list.List // of *entry, most recent at the front
	apps map[string]*list.Element
}

type entry struct {
	id   string
	app  *App
	seen time.Time
}

func NewRegistry(api *progres.Client, kv repository.KV, prefix string, events service.Publisher, s Settings, log *zap.Logger, storeOpts ...session.Option) *Registry {
	return &Registry{
		API:        api,
		KV:         kv,
		Prefix:     prefix,
		StoreOpts:  storeOpts,
		Events:     events,
		Settings:   s,
		Log:        logger.OrNop(log),
		MaxClients: DefaultMaxClients,
		Idle:       DefaultClientIdle,
		now:        time.Now,
		lru:        list.New(),
		apps:       map[string]*list.Element{},
	}
}

// Namespace is the session key prefix of client id.
func (r *Registry) Namespace(id string) string { return r.Prefix + ":client:" + id }

// Get returns the App of client id, creating it on first use.
func (r *Registry) Get(id string) *App {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if el, ok := r.apps[id]; ok {
		e := el.Value.(*entry)
		e.seen = now
		r.lru.MoveToFront(el)
		return e.app
	}
	opts := append([]session.Option{session.WithLogger(r.Log)}, r.StoreOpts...)
	store := session.New(r.KV, r.Namespace(id), opts...)
	a := New(id, r.API, store, r.Events, r.Settings, r.Log)
	r.apps[id] = r.lru.PushFront(&entry{id: id, app: a, seen: now})

	if r.MaxClients > 0 {
		for r.lru.Len() > r.MaxClients {
			r.removeLocked(r.lru.Back())
		}
	}
	return a
}

// Sweep drops clients not seen for Idle and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.Idle)
	n := 0
	for el := r.lru.Back(); el != nil; el = r.lru.Back() {
		if el.Value.(*entry).seen.After(cutoff) {
			break
		}
		r.removeLocked(el)
		n++
	}
	return n
}

// SweepLoop runs Sweep every interval until ctx ends.
func (r *Registry) SweepLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.Log.Debug("idle clients dropped", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) removeLocked(el *list.Element) {
	e := r.lru.Remove(el).(*entry)
	delete(r.apps, e.id)
	e.app.Close()
}

// Len is the number of clients currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}
