package model

import (
	"encoding/json"
	"testing"
)

func TestIDDecodesNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":42,"b":"17","c":null,"d":""}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 42 || v.B != 17 || v.C != 0 || v.D != 0 {
		t.Fatalf("unexpected ids: %+v", v)
	}

	var bad ID
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestMarkKeepsTextAndValidity(t *testing.T) {
	var v struct {
		Num   Mark `json:"num"`
		Str   Mark `json:"str"`
		Comma Mark `json:"comma"`
		NA    Mark `json:"na"`
		Null  Mark `json:"null"`
	}
	raw := `{"num":12.50,"str":"15","comma":"9,75","na":"N/A","null":null}`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v.Num.String() != "12.50" {
		t.Fatalf("expected literal 12.50, got %q", v.Num.String())
	}
	if f, ok := v.Str.Float(); !ok || f != 15 {
		t.Fatalf("expected 15, got %v %v", f, ok)
	}
	if f, ok := v.Comma.Float(); !ok || f != 9.75 {
		t.Fatalf("expected 9.75, got %v %v", f, ok)
	}
	if _, ok := v.NA.Float(); ok {
		t.Fatal("N/A must not parse")
	}
	if v.Null.Present || v.Null.String() != "N/A" {
		t.Fatalf("null mark should be absent, got %+v", v.Null)
	}

	out, err := json.Marshal(v.Null)
	if err != nil || string(out) != "null" {
		t.Fatalf("expected null, got %s %v", out, err)
	}
}

func TestFirstMarkSkipsEmpty(t *testing.T) {
	got := FirstMark(Mark{}, NewMark("  "), NewMark("14.2"), NewMark("9"))
	if got.Text != "14.2" {
		t.Fatalf("expected 14.2, got %q", got.Text)
	}
	if FirstMark().Present {
		t.Fatal("expected absent mark")
	}
}

func TestEnrollmentMapping(t *testing.T) {
	var recs []EnrollmentRecord
	raw := `[
		{"id":"101","niveauId":7,"ouvertureOffreFormationId":55,"anneeAcademiqueCode":"2024/2025",
		 "ofLlFiliere":"Informatique","refLibelleCycle":"Licence","niveauLibelleLongLt":"L3",
		 "llEtablissementLatin":"USTHB"},
		{"id":90,"anneeAcademiqueCode":"2023/2024","ofLlFiliere":"Informatique"}
	]`
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	first := NewEnrollment(recs[0], 0)
	if first.ID != 101 || first.OffreFormationID != 55 || first.Cycle != "Licence" {
		t.Fatalf("unexpected mapping: %+v", first)
	}
	if first.DisplayName != "2024/2025 - Informatique" || !first.IsCurrentYear {
		t.Fatalf("unexpected display: %q current=%v", first.DisplayName, first.IsCurrentYear)
	}
	if first.OptionLabel() != "2024/2025 - Informatique (L3) 🎓" {
		t.Fatalf("unexpected label %q", first.OptionLabel())
	}
	if len(first.Raw) == 0 {
		t.Fatal("raw record not kept")
	}

	second := NewEnrollment(recs[1], 1)
	if second.IsCurrentYear {
		t.Fatal("only index 0 is the current year")
	}
	if second.OptionLabel() != "2023/2024 - Informatique" {
		t.Fatalf("unexpected label %q", second.OptionLabel())
	}
}

func TestReportFallbacks(t *testing.T) {
	cc := CCNote{McLibelleAr: "رياضيات"}
	if cc.Subject() != "رياضيات" {
		t.Fatalf("unexpected subject %q", cc.Subject())
	}
	if (CCNote{}).Subject() != "Unknown Subject" {
		t.Fatal("expected Unknown Subject")
	}

	exam := ExamNote{NomMc: "Algo", Coeff: NewMark("3")}
	if exam.Subject() != "Algo" || exam.Coef().Text != "3" {
		t.Fatalf("unexpected exam fallbacks: %q %q", exam.Subject(), exam.Coef().Text)
	}

	y := YearlyBilan{MoyenneAnnuelle: NewMark("11.3"), CreditsObtenus: NewMark("60")}
	if y.GPA().Text != "11.3" || y.Credits().Text != "60" {
		t.Fatalf("unexpected yearly: %q %q", y.GPA().Text, y.Credits().Text)
	}
}

func TestSessionComplete(t *testing.T) {
	var s Session
	if s.Complete() {
		t.Fatal("zero session must be incomplete")
	}
	s = Session{
		AuthToken:   "tok",
		CurrentUser: UserProfile{UUID: "u"},
		AuthContext: AuthContext{UUID: "u"},
	}
	if s.Complete() {
		t.Fatal("missing login time must be incomplete")
	}
}
