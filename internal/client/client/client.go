package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/netx"
)

// Client is the API surface used by the CLI.
type Client interface {
	Ping(ctx context.Context) (*Health, error)
	Register(ctx context.Context, email string, password []byte) (*User, error)
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*User, error)
	CreateFile(ctx context.Context, f NewFile) (*File, error)
	GetFile(ctx context.Context, id string) (*File, error)
	ListFiles(ctx context.Context, parentID string, page int) ([]File, error)
	SetPublic(ctx context.Context, id string, public bool) (*File, error)
	Download(ctx context.Context, id, size string) (*Content, error)
	LoggedIn() bool
}

// HTTPClient implements Client over the HTTP API. It is safe for concurrent
// use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the server at addr. A bare host:port is
// treated as http.
func NewHTTPClient(addr string, timeout time.Duration) (*HTTPClient, error) {
	base, err := netx.BaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: base, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// LoggedIn reports whether a session token is held.
func (c *HTTPClient) LoggedIn() bool {
	return c.getToken() != ""
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	basic  *[2]string
}

// do sends req and returns the response for a 2xx status. The caller closes
// the body.
func (c *HTTPClient) do(ctx context.Context, req request) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	r, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, err
	}
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.basic != nil {
		r.SetBasicAuth(req.basic[0], req.basic[1])
	}
	if req.auth {
		token := c.getToken()
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		r.Header.Set(common.TokenHeaderName, token)
	}

	resp, err := c.http.Do(r)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%v: %w", err, ErrUnavailable)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	var e struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &e) != nil {
		e.Error = strings.TrimSpace(string(raw))
	}
	return nil, &APIError{Status: resp.StatusCode, Message: e.Error}
}

func (c *HTTPClient) doJSON(ctx context.Context, req request, dst any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping fetches /health. A degraded server answers 500, which surfaces as
// *APIError.
func (c *HTTPClient) Ping(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/health"}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) Register(ctx context.Context, email string, password []byte) (*User, error) {
	body := map[string]string{"email": email, "password": string(password)}

	var u User
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/register", body: body}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a session token and keeps it.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) error {
	var t struct {
		Token string `json:"token"`
	}
	req := request{method: http.MethodPost, path: "/login", basic: &[2]string{email, string(password)}}
	if err := c.doJSON(ctx, req, &t); err != nil {
		return err
	}
	if t.Token == "" {
		return fmt.Errorf("empty token in login response")
	}
	c.setToken(t.Token)
	return nil
}

// Logout revokes the session. The local token is dropped even when the call
// fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/logout", auth: true}, nil)
	c.setToken("")
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

func (c *HTTPClient) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/profile", auth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) CreateFile(ctx context.Context, f NewFile) (*File, error) {
	body := struct {
		Name     string   `json:"name"`
		Type     FileType `json:"type"`
		ParentID string   `json:"parentId,omitempty"`
		IsPublic bool     `json:"isPublic"`
		Data     string   `json:"data,omitempty"`
	}{
		Name:     f.Name,
		Type:     f.Type,
		ParentID: f.ParentID,
		IsPublic: f.IsPublic,
	}
	if f.Type != TypeFolder {
		body.Data = base64.StdEncoding.EncodeToString(f.Data)
	}

	var out File
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/files", body: body, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, id string) (*File, error) {
	var out File
	path := "/files/" + url.PathEscape(id)
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: path, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, parentID string, page int) ([]File, error) {
	q := url.Values{}
	if parentID != "" {
		q.Set("parentId", parentID)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var out []File
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/files", query: q, auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SetPublic(ctx context.Context, id string, public bool) (*File, error) {
	action := "unpublish"
	if public {
		action = "publish"
	}

	var out File
	path := "/files/" + url.PathEscape(id) + "/" + action
	if err := c.doJSON(ctx, request{method: http.MethodPut, path: path, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches file content. The token is sent when held so private
// files of the caller are readable; anonymous calls see public files only.
func (c *HTTPClient) Download(ctx context.Context, id, size string) (*Content, error) {
	q := url.Values{}
	if size != "" {
		q.Set("size", size)
	}

	req := request{
		method: http.MethodGet,
		path:   "/files/" + url.PathEscape(id) + "/data",
		query:  q,
		auth:   c.LoggedIn(),
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read content: %v: %w", err, ErrUnavailable)
	}
	return &Content{MimeType: resp.Header.Get("Content-Type"), Data: data}, nil
}
