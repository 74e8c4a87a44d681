package progres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// list GETs endpoint and decodes a JSON array of T.  A single object is
// accepted as a one-element list and null as an empty one; the API is not
// consistent about either.
func list[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "unexpected response from " + endpoint, Err: err}
		}
		return []T{one}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "unexpected response from " + endpoint, Err: err}
	}
	return out, nil
}

func esc(s string) string { return url.PathEscape(s) }

// Enrollments lists the student's registrations, most recent first.
func (c *Client) Enrollments(ctx context.Context, uuid string) ([]model.EnrollmentRecord, error) {
	return list[model.EnrollmentRecord](ctx, c, fmt.Sprintf("/infos/bac/%s/dias", esc(uuid)))
}

// Periods lists the semesters of a niveau.
func (c *Client) Periods(ctx context.Context, niveauID model.ID) ([]model.PeriodRecord, error) {
	return list[model.PeriodRecord](ctx, c, fmt.Sprintf("/infos/niveau/%d/periodes", niveauID))
}

func (c *Client) CCNotes(ctx context.Context, enrollmentID model.ID) ([]model.CCNote, error) {
	return list[model.CCNote](ctx, c, fmt.Sprintf("/infos/controleContinue/dia/%d/notesCC", enrollmentID))
}

func (c *Client) ExamNotes(ctx context.Context, enrollmentID model.ID) ([]model.ExamNote, error) {
	return list[model.ExamNote](ctx, c, fmt.Sprintf("/infos/planningSession/dia/%d/noteExamens", enrollmentID))
}

func (c *Client) Schedule(ctx context.Context, enrollmentID model.ID) ([]model.ScheduleSession, error) {
	return list[model.ScheduleSession](ctx, c, fmt.Sprintf("/infos/seanceEmploi/inscription/%d", enrollmentID))
}

func (c *Client) PeriodBilans(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.PeriodBilan, error) {
	return list[model.PeriodBilan](ctx, c, fmt.Sprintf("/infos/bac/%s/dias/%d/periode/bilans", esc(uuid), enrollmentID))
}

func (c *Client) Groups(ctx context.Context, enrollmentID model.ID) ([]model.GroupAssignment, error) {
	return list[model.GroupAssignment](ctx, c, fmt.Sprintf("/infos/dia/%d/groups", enrollmentID))
}

func (c *Client) YearlyBilan(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.YearlyBilan, error) {
	return list[model.YearlyBilan](ctx, c, fmt.Sprintf("/infos/bac/%s/dia/%d/annuel/bilan", esc(uuid), enrollmentID))
}

// SemesterSummaries is the per-enrollment bilan used by the semester summary.
func (c *Client) SemesterSummaries(ctx context.Context, uuid string, enrollmentID model.ID) ([]model.PeriodBilan, error) {
	return list[model.PeriodBilan](ctx, c, fmt.Sprintf("/infos/bac/%s/dia/%d/bilan", esc(uuid), enrollmentID))
}
