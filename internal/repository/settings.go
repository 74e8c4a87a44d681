package repository

import (
	"context"
	"errors"
	"strings"
)

// Setting keys written on first run.
const (
	SettingAPIBaseURL = "apiBaseUrl"
	SettingAutoLogin  = "autoLogin"
)

// SettingsRepo reads and seeds the persisted defaults.  Settings live beside
// the session keys but are never cleared by logout.
type SettingsRepo struct {
	KV     KV
	Prefix string
}

func NewSettingsRepo(kv KV, prefix string) *SettingsRepo {
	return &SettingsRepo{KV: kv, Prefix: prefix}
}

func (r *SettingsRepo) key(name string) string { return r.Prefix + ":settings:" + name }

// SeedDefaults writes apiBaseUrl and autoLogin=false unless they already
// exist.  It reports how many keys were written.
func (r *SettingsRepo) SeedDefaults(ctx context.Context, apiBase string) (int, error) {
	defaults := []struct{ name, value string }{
		{SettingAPIBaseURL, apiBase},
		{SettingAutoLogin, "false"},
	}
	written := 0
	for _, d := range defaults {
		ok, err := r.KV.SetNX(ctx, r.key(d.name), d.value)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// Get returns a setting's value; ok is false when it was never written.
func (r *SettingsRepo) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := r.KV.Get(ctx, r.key(name))
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// APIBase resolves the records API base.  explicit (from the environment)
// wins; otherwise the stored install default is used when it is https, and
// fallback when it is absent or unusable.
func (r *SettingsRepo) APIBase(ctx context.Context, explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	v, ok, err := r.Get(ctx, SettingAPIBaseURL)
	if err != nil || !ok || !strings.HasPrefix(v, "https://") {
		return fallback
	}
	return v
}
