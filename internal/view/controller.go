// Package view holds the screen switcher, the swipe pager, the status
// banner and the host menu.  None of it fetches anything; the app package
// feeds it outcomes and serializes access.
package view

import (
	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

type Screen int

const (
	Login Screen = iota
	Dashboard
	Content
)

func (s Screen) String() string {
	switch s {
	case Dashboard:
		return "dashboard"
	case Content:
		return "content"
	}
	return "login"
}

func (s Screen) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Nav is the screen state.  Like selection.State it is a value and every
// transition returns a copy.
type Nav struct {
	Screen Screen
	// Kind and Title describe the open report on the Content screen.
	Kind  report.Kind
	Title string
	// LoginError is the inline message under the login form.
	LoginError string
}

// LoggedIn moves to the dashboard from any screen.
func (n Nav) LoggedIn() Nav {
	return Nav{Screen: Dashboard}
}

// LoginFailed stays on the login screen with msg shown.
func (n Nav) LoginFailed(msg string) Nav {
	return Nav{Screen: Login, LoginError: msg}
}

func (n Nav) LoggedOut() Nav { return Nav{Screen: Login} }

// Open shows report k.  Callers check the selection gate first; Open itself
// only refuses when nobody is logged in.
func (n Nav) Open(k report.Kind) (Nav, bool) {
	if n.Screen == Login {
		return n, false
	}
	return Nav{Screen: Content, Kind: k, Title: k.Title()}, true
}

// Back always lands on the dashboard once logged in.
func (n Nav) Back() Nav {
	if n.Screen == Login {
		return n
	}
	return Nav{Screen: Dashboard}
}

// Narrow reports whether width gets the swipeable single-column layout.
func Narrow(width, breakpoint int) bool { return width > 0 && width < breakpoint }
