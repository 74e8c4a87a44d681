package model

import "time"

// RoleStudent is the only role the records API hands out to this client.
const RoleStudent = "student"

// UserProfile is the canonical student profile built once at login from the
// authentication response and the first enrollment record.  It is immutable
// for the lifetime of the session.
//
// Fields:
//
//	Name        – lastName + " " + firstName, as the API orders them.
//	Institution – llEtablissementLatin of the first enrollment.
//	ProfilePic  – data URI of the photo; empty when the API had none.
type UserProfile struct {
	ID               ID        `json:"id"`
	UUID             string    `json:"uuid"`
	IDIndividu       ID        `json:"idIndividu"`
	UserName         string    `json:"userName"`
	Name             string    `json:"name"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	DateOfBirth      string    `json:"dateOfBirth"`
	PlaceOfBirth     string    `json:"placeOfBirth"`
	Role             string    `json:"role"`
	EtablissementID  ID        `json:"etablissementId"`
	Institution      string    `json:"institution"`
	ProfilePic       string    `json:"profilePic,omitempty"`
	LoginTimestamp   time.Time `json:"loginTimestamp"`
	TotalEnrollments int       `json:"totalEnrollments"`
}

// DisplayName falls back to the login name when the profile has no name.
func (u UserProfile) DisplayName() string {
	return FirstText(u.UserName, u.Name)
}

// RoleLine is the dashboard subtitle, e.g. "student • Université d'Alger 1".
func (u UserProfile) RoleLine() string {
	role := FirstText("Student", u.Role)
	if u.Institution == "" {
		return role
	}
	return role + " • " + u.Institution
}
