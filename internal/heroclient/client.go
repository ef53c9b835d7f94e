// Package heroclient is a typed client for the heroes REST API.
package heroclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dom/cyprine-heroes/internal/domain"
)

const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource yields the bearer token attached to mutating requests. An
// empty string means no credential.
type TokenSource interface {
	Token() string
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Client handles HTTP communication with the backend. It never retries.
type Client struct {
	baseURL    string
	origin     string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource sets the credential provider for mutating calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:    baseURL,
		origin:     originOf(baseURL),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that reads credentials from ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// ImageURL resolves a profile_picture path against the backend origin.
func (c *Client) ImageURL(profilePicture string) string {
	if profilePicture == "" || strings.HasPrefix(profilePicture, "http://") || strings.HasPrefix(profilePicture, "https://") {
		return profilePicture
	}
	return c.origin + "/" + strings.TrimLeft(profilePicture, "/")
}

func (c *Client) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	var heroes []domain.Hero
	if err := c.do(ctx, "list heroes", http.MethodGet, "/heroes", nil, "", false, &heroes); err != nil {
		return nil, err
	}
	if heroes == nil {
		heroes = []domain.Hero{}
	}
	return heroes, nil
}

func (c *Client) GetHero(ctx context.Context, id string) (*domain.Hero, error) {
	var hero domain.Hero
	if err := c.do(ctx, "get hero", http.MethodGet, "/heroes/"+url.PathEscape(id), nil, "", false, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (c *Client) CreateHero(ctx context.Context, input domain.HeroCreate) (*domain.Hero, error) {
	body, err := jsonBody(input)
	if err != nil {
		return nil, err
	}
	var hero domain.Hero
	if err := c.do(ctx, "create hero", http.MethodPost, "/heroes", body, "application/json", true, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (c *Client) UpdateHero(ctx context.Context, id string, input domain.HeroUpdate) (*domain.Hero, error) {
	body, err := jsonBody(input)
	if err != nil {
		return nil, err
	}
	var hero domain.Hero
	if err := c.do(ctx, "update hero", http.MethodPut, "/heroes/"+url.PathEscape(id), body, "application/json", true, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (c *Client) DeleteHero(ctx context.Context, id string) error {
	return c.do(ctx, "delete hero", http.MethodDelete, "/heroes/"+url.PathEscape(id), nil, "", true, nil)
}

// UploadImage sends the picture as the multipart field "file" and returns the
// hero with profile_picture populated.
func (c *Client) UploadImage(ctx context.Context, id, filename string, r io.Reader) (*domain.Hero, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(filePartHeader(filename))
	if err != nil {
		return nil, fmt.Errorf("build upload body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload body: %w", err)
	}

	var hero domain.Hero
	if err := c.do(ctx, "upload image", http.MethodPost, "/heroes/upload-image/"+url.PathEscape(id), &buf, mw.FormDataContentType(), true, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (c *Client) Login(ctx context.Context, password string) (*TokenResponse, error) {
	body, err := jsonBody(map[string]string{"password": password})
	if err != nil {
		return nil, err
	}
	var token TokenResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, "application/json", false, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// HTTP helpers

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, authed bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func jsonBody(v interface{}) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// readDetail extracts {"detail": ...} from an error body, falling back to
// the raw text.
func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return s
		}
		return string(body.Detail)
	}
	return strings.TrimSpace(string(raw))
}

func filePartHeader(filename string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func originOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return baseURL
	}
	return u.Scheme + "://" + u.Host
}
