// Package queue defines the session lifecycle messages exchanged over the
// broker and the consumer that records them.
package queue

import (
	"fmt"
	"strings"
)

// SessionQueue is the durable queue session events are routed to.
const SessionQueue = "progres.session"

type EventType string

const (
	EventLogin       EventType = "login"
	EventLoginFailed EventType = "login_failed"
	EventLogout      EventType = "logout"
	EventRestored    EventType = "restored"
)

// SessionEvent is published on every login, failed login, logout and
// session restore.  It never carries the token or the password.
type SessionEvent struct {
	Type        EventType `json:"type"`
	ClientID    string    `json:"client_id"`
	UUID        string    `json:"uuid,omitempty"`
	UserName    string    `json:"user_name,omitempty"`
	Institution string    `json:"institution,omitempty"`
	Enrollments int       `json:"enrollments,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	At          string    `json:"at"`
}

// Line renders the event as one log line.
func (e SessionEvent) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] session %s | client=%s", e.At, e.Type, e.ClientID)
	if e.UUID != "" {
		fmt.Fprintf(&b, " | uuid=%s", e.UUID)
	}
	if e.UserName != "" {
		fmt.Fprintf(&b, " | user=%q", e.UserName)
	}
	if e.Institution != "" {
		fmt.Fprintf(&b, " | institution=%q", e.Institution)
	}
	if e.Enrollments > 0 {
		fmt.Fprintf(&b, " | enrollments=%d", e.Enrollments)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " | reason=%q", e.Reason)
	}
	b.WriteByte('\n')
	return b.String()
}
