package view

import "math"

type SwipePhase int

const (
	Idle SwipePhase = iota
	Dragging
	Settling
)

func (p SwipePhase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	}
	return "idle"
}

func (p SwipePhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// DefaultThreshold is the share of the viewport a drag must exceed to turn
// the page.
const DefaultThreshold = 0.2

// Pager is the swipe state of the narrow layout: Idle -> Dragging on touch
// start, Dragging -> Settling on release, Settling -> Idle once the painter
// finished the animation.  A new touch or a dot click may interrupt
// Settling.
type Pager struct {
	Index     int
	Pages     int
	Threshold float64
	Phase     SwipePhase

	startX float64
	delta  float64
	width  float64
}

func NewPager(pages int, threshold float64) Pager {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return Pager{Pages: pages, Threshold: threshold}
}

// Start begins a drag at x in a viewport of the given width.  It is ignored
// while already dragging.
func (p Pager) Start(x, width float64) Pager {
	if p.Phase == Dragging || width <= 0 {
		return p
	}
	p.Phase = Dragging
	p.startX = x
	p.delta = 0
	p.width = width
	return p
}

// Move records the finger position.  Outside a drag it does nothing.
func (p Pager) Move(x float64) Pager {
	if p.Phase != Dragging {
		return p
	}
	p.delta = x - p.startX
	return p
}

// End releases the drag.  A drag right beyond the threshold goes to the
// previous page, a drag left to the next one, clamped to the page range.
func (p Pager) End() Pager {
	if p.Phase != Dragging {
		return p
	}
	if math.Abs(p.delta) > p.width*p.Threshold {
		switch {
		case p.delta > 0 && p.Index > 0:
			p.Index--
		case p.delta < 0 && p.Index < p.Pages-1:
			p.Index++
		}
	}
	p.Phase = Settling
	p.delta = 0
	return p
}

// Settled finishes the snap animation.
func (p Pager) Settled() Pager {
	if p.Phase == Settling {
		p.Phase = Idle
	}
	return p
}

// Jump goes straight to page i, as an indicator dot does.  Out of range
// values are clamped.
func (p Pager) Jump(i int) Pager {
	p.Index = clamp(i, 0, p.Pages-1)
	p.Phase = Idle
	p.delta = 0
	return p
}

// Offset is the container translation in percent of its own width.  While
// dragging it follows the finger.
func (p Pager) Offset() float64 {
	if p.Pages <= 0 {
		return 0
	}
	share := 100 / float64(p.Pages)
	off := -float64(p.Index) * share
	if p.Phase == Dragging && p.width > 0 {
		off += p.delta / p.width * share
	}
	return off
}

// Dots reports which indicator is active.
func (p Pager) Dots() []bool {
	if p.Pages <= 0 {
		return nil
	}
	d := make([]bool, p.Pages)
	d[p.Index] = true
	return d
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
