// Package progres is a small client for the Progres student records API.
// Every call is a single attempt: no retry, no backoff and no timeout beyond
// what the caller's context imposes.
package progres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// DefaultUserAgent identifies this client to the API.
const DefaultUserAgent = "progres-Algeria-Extension/1.0"

// error bodies are quoted in messages up to this many bytes
const maxErrorBody = 512

type Client struct {
	base      string
	token     string
	userAgent string
	http      *http.Client
	log       *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = logger.OrNop(l) } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:      baseURL,
		userAgent: DefaultUserAgent,
		// no Timeout: cancellation belongs to the caller's context
		http: &http.Client{},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string { return c.token }

func (c *Client) BaseURL() string { return c.base }

// URL composes base + endpoint + query.  The endpoint gains a leading slash
// when missing and one trailing slash is dropped from the base.  Nil query
// values (including typed nil pointers) are skipped.
func (c *Client) URL(endpoint string, query map[string]any) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	full := strings.TrimSuffix(c.base, "/") + endpoint
	if !strings.HasPrefix(full, "https://") {
		return "", &APIError{Kind: KindConfig, Endpoint: endpoint, Message: "API URL must use https: " + full}
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", &APIError{Kind: KindConfig, Endpoint: endpoint, Message: "invalid API URL " + full, Err: err}
	}
	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := u.Query()
		for _, k := range keys {
			v, ok := queryValue(query[k])
			if !ok {
				continue
			}
			q.Add(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func queryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface()), true
}

// Call GETs endpoint and decodes the JSON body into out (when non-nil).
func (c *Client) Call(ctx context.Context, endpoint string, query map[string]any, out any) error {
	target, err := c.URL(endpoint, query)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &APIError{Kind: KindConfig, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	body, err := c.do(req, endpoint)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "unexpected response from " + endpoint, Err: err}
	}
	return nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	if c.token != "" {
		// the API expects the bare token, not a Bearer scheme
		req.Header.Set("Authorization", c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("api call", zap.String("method", req.Method), zap.String("endpoint", endpoint))
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api network error", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &APIError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := truncate(string(body), maxErrorBody)
		if excerpt == "" {
			excerpt = "Unknown error"
		}
		ae := statusError(endpoint, resp.StatusCode, excerpt)
		c.log.Warn("api call failed", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		if ae.AuthExpired() {
			c.log.Warn("authentication may have expired, consider re-login", zap.String("endpoint", endpoint))
		}
		return nil, ae
	}
	return body, nil
}

// Authenticate exchanges credentials for a token and identifiers.
func (c *Client) Authenticate(ctx context.Context, username, password string) (model.AuthResponse, error) {
	const endpoint = "/authentication/v1/"
	target, err := c.URL(endpoint, nil)
	if err != nil {
		return model.AuthResponse{}, err
	}
	payload, err := json.Marshal(model.Credentials{Username: username, Password: password})
	if err != nil {
		return model.AuthResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return model.AuthResponse{}, &APIError{Kind: KindConfig, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.WithToken("").do(req, endpoint)
	if err != nil {
		return model.AuthResponse{}, err
	}
	var out model.AuthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return model.AuthResponse{}, &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "unexpected authentication response", Err: err}
	}
	if out.Token == "" || out.UUID == "" {
		return model.AuthResponse{}, &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "authentication response has no token"}
	}
	return out, nil
}

// Image fetches the student's photo.  The API answers with base64 text;
// decoding is left to the caller.
func (c *Client) Image(ctx context.Context, uuid string) ([]byte, error) {
	endpoint := "/infos/image/" + url.PathEscape(uuid)
	target, err := c.URL(endpoint, nil)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &APIError{Kind: KindConfig, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "image/png")
	req.Header.Set("Cache-Control", "no-cache")
	body, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &APIError{Kind: KindDecode, Endpoint: endpoint, Message: "empty image", Err: errors.New("empty body")}
	}
	return body, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
