package progres

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestURLConstruction(t *testing.T) {
	for _, base := range []string{"https://x/api", "https://x/api/"} {
		c := New(base)
		for _, ep := range []string{"infos/y", "/infos/y"} {
			got, err := c.URL(ep, nil)
			if err != nil {
				t.Fatalf("URL(%q,%q): %v", base, ep, err)
			}
			if got != "https://x/api/infos/y" {
				t.Fatalf("base %q endpoint %q: expected https://x/api/infos/y, got %s", base, ep, got)
			}
		}
	}
}

func TestURLSkipsNilParams(t *testing.T) {
	var nilPtr *int
	n := 3
	got, err := New("https://x/api").URL("/q", map[string]any{
		"a": "1", "b": nil, "c": nilPtr, "d": &n,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://x/api/q?a=1&d=3" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestNonHTTPSIsConfigError(t *testing.T) {
	c := New("http://x/api")
	_, err := c.URL("/infos", nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Kind != KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if err := c.Call(context.Background(), "/infos", nil, nil); err == nil {
		t.Fatal("Call must refuse http base")
	}
}

func newTLS(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL+"/api/", WithHTTPClient(srv.Client()))
}

func TestCallSendsHeadersAndDecodes(t *testing.T) {
	var gotAuth, gotUA, gotPath string
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"code":"S1","libelleLongLt":"Semestre 1"},{"id":"2","code":"S2"}]`)
	})

	recs, err := c.WithToken("raw-token").Periods(context.Background(), 12)
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if gotAuth != "raw-token" {
		t.Fatalf("expected raw token header, got %q", gotAuth)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("expected user agent %q, got %q", DefaultUserAgent, gotUA)
	}
	if gotPath != "/api/infos/niveau/12/periodes" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if len(recs) != 2 || recs[1].ID != 2 || recs[0].LibelleLongLt != "Semestre 1" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestListAcceptsObjectAndNull(t *testing.T) {
	body := `{"moyenne":"12.5"}`
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) })

	ys, err := c.YearlyBilan(context.Background(), "u", 1)
	if err != nil || len(ys) != 1 || ys[0].GPA().Text != "12.5" {
		t.Fatalf("object as list: %+v %v", ys, err)
	}
	body = "null"
	gs, err := c.Groups(context.Background(), 1)
	if err != nil || len(gs) != 0 {
		t.Fatalf("null as empty: %+v %v", gs, err)
	}
}

func TestHTTPStatusError(t *testing.T) {
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	})
	err := c.Call(context.Background(), "/infos/x", nil, nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Kind != KindHTTPStatus || ae.Status != 401 {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if !strings.Contains(ae.Error(), "API Error 401: Unauthorized - token expired") {
		t.Fatalf("unexpected message %q", ae.Error())
	}
	if !IsAuthExpired(err) {
		t.Fatal("401 should be flagged as auth expiry")
	}
}

func TestErrorExcerptKeepsRunesWhole(t *testing.T) {
	// an Arabic letter straddles the excerpt limit
	body := strings.Repeat("x", maxErrorBody-1) + "خطأ في الخادم"
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, body)
	})
	err := c.Call(context.Background(), "/infos/x", nil, nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Status != 500 {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
	if !utf8.ValidString(ae.Message) {
		t.Fatalf("message is not valid UTF-8: %q", ae.Message)
	}
	if !strings.HasSuffix(ae.Message, strings.Repeat("x", maxErrorBody-1)) {
		t.Fatalf("expected the excerpt to stop before the split rune, got %q", ae.Message[len(ae.Message)-20:])
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"خطأ", 4, "خط"},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.n); got != c.want {
			t.Fatalf("truncate(%q, %d): expected %q, got %q", c.in, c.n, c.want, got)
		}
	}
}

func TestNetworkError(t *testing.T) {
	srv, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	err := c.Call(context.Background(), "/infos/x", nil, nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSingleAttempt(t *testing.T) {
	calls := 0
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	_ = c.Call(context.Background(), "/infos/x", nil, nil)
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestAuthenticate(t *testing.T) {
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/authentication/v1/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must not send a token")
		}
		b, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(b), `"username":"jane"`) {
			t.Errorf("unexpected body %s", b)
		}
		io.WriteString(w, `{"token":"t","uuid":"u-1","userId":5,"idIndividu":"9","etablissementId":3,"userName":"jane"}`)
	})
	res, err := c.WithToken("stale").Authenticate(context.Background(), "jane", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.Token != "t" || res.IDIndividu != 9 || res.UserID != 5 {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestCancelledContext(t *testing.T) {
	_, c := newTLS(t, func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "[]") })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Call(ctx, "/infos/x", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
