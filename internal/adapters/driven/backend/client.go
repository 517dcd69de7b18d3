package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.AnalysisGateway = (*Client)(nil)
	_ driven.AuthGateway     = (*Client)(nil)
)

// Config holds the backend client configuration. Upload requests get their
// own timeout and body-size ceiling, distinct from the default request
// timeout.
type Config struct {
	BaseURL     string
	AuthBaseURL string // defaults to BaseURL

	Timeout       time.Duration // default request timeout
	UploadTimeout time.Duration // multipart submission timeout
	AuthTimeout   time.Duration // register/login timeout

	MaxUploadSize int64 // multipart body ceiling in bytes

	// WithCredentials installs a cookie jar so backend-issued cookies are
	// replayed, mirroring the browser credentials mode.
	WithCredentials bool
}

// DefaultConfig returns the documented defaults for a base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       120 * time.Second,
		UploadTimeout: 5 * time.Minute,
		AuthTimeout:   30 * time.Second,
		MaxUploadSize: 100 * 1024 * 1024,
	}
}

// Client talks to the analysis backend over HTTP. It performs no automatic
// retries; callers decide.
type Client struct {
	cfg          Config
	httpClient   *http.Client // default timeout
	uploadClient *http.Client // long timeout for multipart submissions
	authClient   *http.Client
	authBaseURL  string
}

// NewClient creates a backend client from the configuration, applying
// defaults for unset values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 5 * time.Minute
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 30 * time.Second
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 100 * 1024 * 1024
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = cfg.BaseURL
	}
	cfg.AuthBaseURL = strings.TrimSuffix(cfg.AuthBaseURL, "/")

	var jar http.CookieJar
	if cfg.WithCredentials {
		jar, _ = cookiejar.New(nil)
	}

	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout, Jar: jar},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout, Jar: jar},
		authClient:   &http.Client{Timeout: cfg.AuthTimeout, Jar: jar},
		authBaseURL:  cfg.AuthBaseURL,
	}
}

// SubmitAnalysis posts the multipart submission to the upload endpoint.
func (c *Client) SubmitAnalysis(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
	body, contentType, err := buildMultipart(sub, c.cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/analyze/upload", body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: network error: unable to reach server", domain.ErrUploadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := serverMessage(resp.Body); msg != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUploadFailed, msg)
		}
		return nil, fmt.Errorf("%w: upload failed: %d", domain.ErrUploadFailed, resp.StatusCode)
	}

	var receipt domain.AnalysisReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUploadFailed, err)
	}
	return &receipt, nil
}

// ListProjects fetches the project index for a scope. An empty index is a
// valid outcome.
func (c *Client) ListProjects(ctx context.Context, scope string, limit int) ([]domain.ProjectStub, error) {
	if limit <= 0 {
		limit = 50
	}
	path := fmt.Sprintf("/api/projects/%s?limit=%d", url.PathEscape(scope), limit)

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var index struct {
		Projects []domain.ProjectStub `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("%w: decode project index: %v", domain.ErrFetchFailed, err)
	}
	return index.Projects, nil
}

// GetProjectDetails fetches one project aggregate.
func (c *Client) GetProjectDetails(ctx context.Context, scope, projectID string) (*domain.Project, error) {
	path := fmt.Sprintf("/api/projects/%s/%s", url.PathEscape(scope), url.PathEscape(projectID))

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var project domain.Project
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, fmt.Errorf("%w: decode project: %v", domain.ErrFetchFailed, err)
	}
	return &project, nil
}

// Register creates an account and returns the issued session.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	payload := map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	session, status, err := c.postAuth(ctx, "/api/auth/register", payload)
	if err != nil {
		if status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: email already registered or invalid data", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	return session, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	session, status, err := c.postAuth(ctx, "/api/auth/login", payload)
	if err != nil {
		if status == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return session, nil
}

// get performs a GET against the analysis base URL with the default timeout.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: network error: unable to reach server", domain.ErrFetchFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		if msg := serverMessage(resp.Body); msg != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, msg)
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}
	return resp, nil
}

// postAuth performs a JSON POST against the auth base URL. The HTTP status
// is returned so callers can map it to a domain error.
func (c *Client) postAuth(ctx context.Context, path string, payload any) (*domain.Session, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: encode request: %v", domain.ErrUnauthorized, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create request: %v", domain.ErrUnauthorized, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.authClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: network error: unable to reach server", domain.ErrUnauthorized)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := serverMessage(resp.Body); msg != "" {
			return nil, resp.StatusCode, fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	}

	var session domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: decode response: %v", domain.ErrUnauthorized, err)
	}
	if session.Token == "" {
		return nil, resp.StatusCode, fmt.Errorf("%w: response carried no token", domain.ErrUnauthorized)
	}
	return &session, resp.StatusCode, nil
}

// serverMessage extracts a human-readable error message from a response
// body. The backend uses "message" for project endpoints and "detail" for
// auth endpoints.
func serverMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Detail
}

// buildMultipart encodes the submission into a multipart body, enforcing the
// configured size ceiling.
func buildMultipart(sub domain.Submission, maxSize int64) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"user_id": sub.Scope,
		"title":   strings.TrimSpace(sub.Form.Title),
	}
	if v := strings.TrimSpace(sub.Form.Context); v != "" {
		fields["context"] = v
	}
	if v := strings.TrimSpace(sub.Form.ImageDescriptions); v != "" {
		fields["image_descriptions"] = v
	}
	for _, name := range []string{"user_id", "title", "context", "image_descriptions"} {
		if v, ok := fields[name]; ok {
			if err := w.WriteField(name, v); err != nil {
				return nil, "", fmt.Errorf("%w: encode form: %v", domain.ErrUploadFailed, err)
			}
		}
	}

	for _, f := range sub.Files.Images {
		if err := writeFilePart(w, "images", f); err != nil {
			return nil, "", err
		}
	}
	for _, f := range sub.Files.Documents {
		if err := writeFilePart(w, "documents", f); err != nil {
			return nil, "", err
		}
	}
	if sub.Files.Spreadsheet != nil {
		if err := writeFilePart(w, "excel", *sub.Files.Spreadsheet); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: encode form: %v", domain.ErrUploadFailed, err)
	}
	if int64(buf.Len()) > maxSize {
		return nil, "", fmt.Errorf("%w: payload exceeds maximum upload size of %d bytes", domain.ErrUploadFailed, maxSize)
	}
	return &buf, w.FormDataContentType(), nil
}

// writeFilePart adds one file to the multipart body, preserving its MIME
// type instead of the octet-stream default.
func writeFilePart(w *multipart.Writer, field string, f domain.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%w: encode %s part: %v", domain.ErrUploadFailed, field, err)
	}
	if _, err := part.Write(f.Content); err != nil {
		return fmt.Errorf("%w: encode %s part: %v", domain.ErrUploadFailed, field, err)
	}
	return nil
}
