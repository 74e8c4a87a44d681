package view

import (
	"sync"
	"time"
)

// DefaultBannerTTL is how long a status banner stays up.
const DefaultBannerTTL = 3 * time.Second

type stopper interface{ Stop() bool }

// Banner is the auto-dismissing semester status line.  Each Show bumps a
// generation; a timer only clears the banner it was started for, so a late
// timer never hides a newer banner and Cancel never lets one come back.
type Banner struct {
	mu    sync.Mutex
	ttl   time.Duration
	after func(time.Duration, func()) stopper

	text  string
	gen   uint64
	timer stopper
}

func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banner{
		ttl: ttl,
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Show replaces the current banner and schedules its dismissal.  An empty
// text just cancels.
func (b *Banner) Show(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	if text == "" {
		return
	}
	b.text = text
	gen := b.gen
	b.timer = b.after(b.ttl, func() { b.expire(gen) })
}

// Cancel hides the banner now, e.g. on navigation.
func (b *Banner) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

// Text is the banner currently shown, or "".
func (b *Banner) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.text = ""
	b.timer = nil
}

func (b *Banner) stopLocked() {
	b.gen++
	b.text = ""
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
