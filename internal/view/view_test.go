package view

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

func TestNavTransitions(t *testing.T) {
	var n Nav
	if _, ok := n.Open(report.Groups); ok {
		t.Fatal("cannot open a report before login")
	}
	n = n.LoginFailed("Invalid credentials")
	if n.Screen != Login || n.LoginError != "Invalid credentials" {
		t.Fatalf("unexpected nav %+v", n)
	}
	n = n.LoggedIn()
	if n.Screen != Dashboard || n.LoginError != "" {
		t.Fatalf("unexpected nav %+v", n)
	}
	n, ok := n.Open(report.YearlyBilan)
	if !ok || n.Screen != Content || n.Title != "Yearly GPA" {
		t.Fatalf("unexpected nav %+v", n)
	}
	n = n.Back()
	if n.Screen != Dashboard || n.Kind != "" {
		t.Fatalf("back must land on the dashboard, got %+v", n)
	}
	if n.LoggedOut().Screen != Login {
		t.Fatal("logout must land on login")
	}
}

func TestNarrow(t *testing.T) {
	if !Narrow(767, 768) || Narrow(768, 768) || Narrow(0, 768) {
		t.Fatal("unexpected breakpoint handling")
	}
}

func TestPagerThresholdAndClamp(t *testing.T) {
	p := NewPager(6, 0.2)

	// exactly 20% is not enough
	p = p.Start(300, 500).Move(200).End()
	if p.Index != 0 || p.Phase != Settling {
		t.Fatalf("expected snap back, got %+v", p)
	}
	p = p.Settled()
	if p.Phase != Idle {
		t.Fatalf("expected idle, got %s", p.Phase)
	}

	p = p.Start(300, 500).Move(199).End().Settled()
	if p.Index != 1 {
		t.Fatalf("left drag should advance, got %d", p.Index)
	}

	// right drag on the first page stays
	p = p.Jump(0).Start(0, 500).Move(400).End()
	if p.Index != 0 {
		t.Fatalf("expected clamp at 0, got %d", p.Index)
	}

	p = p.Jump(5).Start(400, 500).Move(0).End()
	if p.Index != 5 {
		t.Fatalf("expected clamp at 5, got %d", p.Index)
	}

	p = p.Start(0, 500).Move(200).End()
	if p.Index != 4 {
		t.Fatalf("right drag should go back, got %d", p.Index)
	}
}

func TestPagerOffset(t *testing.T) {
	p := NewPager(6, 0.2).Jump(2)
	if got := p.Offset(); got < -33.34 || got > -33.33 {
		t.Fatalf("unexpected idle offset %v", got)
	}
	p = p.Start(100, 600).Move(400)
	want := -2*100.0/6 + 300.0/600*100/6
	if got := p.Offset(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if d := p.Dots(); !d[2] || d[0] {
		t.Fatalf("unexpected dots %v", d)
	}
}

func TestPagerIgnoresStrayEvents(t *testing.T) {
	p := NewPager(6, 0)
	if p.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold, got %v", p.Threshold)
	}
	if q := p.Move(50).End(); q.Phase != Idle || q.Index != 0 {
		t.Fatalf("move/end without start must be ignored, got %+v", q)
	}
	if q := p.Jump(99); q.Index != 5 {
		t.Fatalf("jump should clamp, got %d", q.Index)
	}
	// release without movement never turns the page
	if q := p.Start(10, 500).End(); q.Index != 0 {
		t.Fatalf("tap must not turn the page, got %d", q.Index)
	}
}

type fakeTimer struct {
	fire    func()
	stopped bool
}

func (f *fakeTimer) Stop() bool { f.stopped = true; return true }

func fakeBanner() (*Banner, *[]*fakeTimer) {
	var timers []*fakeTimer
	b := NewBanner(time.Second)
	b.after = func(_ time.Duration, f func()) stopper {
		ft := &fakeTimer{fire: f}
		timers = append(timers, ft)
		return ft
	}
	return b, &timers
}

func TestBannerAutoDismiss(t *testing.T) {
	b, timers := fakeBanner()
	b.Show("✅ 2 semesters loaded")
	if b.Text() == "" {
		t.Fatal("banner should be visible")
	}
	(*timers)[0].fire()
	if b.Text() != "" {
		t.Fatal("banner should be dismissed")
	}
}

func TestBannerNeverResurrects(t *testing.T) {
	b, timers := fakeBanner()
	b.Show("first")
	b.Show("second")
	if !(*timers)[0].stopped {
		t.Fatal("old timer should be stopped")
	}
	// a late first timer must not hide the second banner
	(*timers)[0].fire()
	if b.Text() != "second" {
		t.Fatalf("expected second, got %q", b.Text())
	}

	b.Cancel()
	(*timers)[1].fire()
	if b.Text() != "" {
		t.Fatalf("cancelled banner came back: %q", b.Text())
	}
	b.Show("")
	if len(*timers) != 2 {
		t.Fatal("empty text must not schedule a timer")
	}
}

func TestBannerRealTimer(t *testing.T) {
	b := NewBanner(10 * time.Millisecond)
	b.Show("loaded")
	deadline := time.Now().Add(2 * time.Second)
	for b.Text() != "" {
		if time.Now().After(deadline) {
			t.Fatal("banner never dismissed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebModeAndMenu(t *testing.T) {
	if WebMode(600, nil) {
		t.Fatal("600 is panel width")
	}
	if !WebMode(1024, url.Values{}) {
		t.Fatal("wide page without panel is web mode")
	}
	if WebMode(1024, url.Values{"panel": {"1"}}) || WebMode(1024, url.Values{"mode": {"panel"}}) {
		t.Fatal("panel query disables web mode")
	}

	m := Menu("https://portal.example/", false)
	if len(m) != 1 || m[0].ID != ActionOpenInTab || m[0].URL != "https://portal.example/" || !m[0].Visible {
		t.Fatalf("unexpected menu %+v", m)
	}
	if Menu("https://portal.example", true)[0].Visible {
		t.Fatal("open-in-tab is hidden in web mode")
	}
}
