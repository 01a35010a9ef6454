// Package tarefasapi implements the service.Service interface against the
// tarefas REST API (/api/tarefas).
package tarefasapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"etarefas/internal/config"
	"etarefas/internal/service"
)

const (
	// ResourcePath is the path of the task collection below the base URL.
	ResourcePath = "/api/tarefas"

	// DefaultTimeout is used when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize bounds every response body, photos included.
	MaxResponseSize = 32 << 20
)

// Client implements service.Service over HTTP.
type Client struct {
	http    *http.Client
	base    *url.URL
	timeout time.Duration
}

// New creates a client from cfg. When cfg.APIToken is set every request
// carries it as a bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	httpClient := http.DefaultClient
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return NewWithHTTPClient(cfg.BaseURL, httpClient, cfg.Timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL: %s", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: httpClient, base: base, timeout: timeout}, nil
}

// wireTask is the JSON shape of a task as served by the API. Pointers mark
// the fields that must be present.
type wireTask struct {
	ID        *int64  `json:"id"`
	Titulo    *string `json:"titulo"`
	Descricao string  `json:"descricao"`
	Concluida bool    `json:"concluida"`
	FotoURL   string  `json:"fotoUrl"`
	FotoSenha string  `json:"fotoSenha"`
}

func (w wireTask) toTask() (service.Task, error) {
	if w.ID == nil {
		return service.Task{}, service.Validationf(nil, "task record missing id")
	}
	if w.Titulo == nil {
		return service.Task{}, service.Validationf(nil, "task %d missing titulo", *w.ID)
	}
	return service.Task{
		ID:            service.TaskID(*w.ID),
		Title:         *w.Titulo,
		Description:   w.Descricao,
		Status:        service.StatusFor(w.Concluida),
		PhotoURL:      w.FotoURL,
		PhotoPassword: w.FotoSenha,
	}, nil
}

// ListTasks returns all tasks in API order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, "list tasks")
	if err != nil {
		return nil, err
	}

	var wire []wireTask
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, service.Validationf(err, "decode task list: %v", err)
	}
	result := make([]service.Task, 0, len(wire))
	for _, w := range wire {
		t, err := w.toTask()
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, rec service.Record) (service.Task, error) {
	return c.send(ctx, http.MethodPost, c.endpoint(), rec, "create task")
}

// ReplaceTask replaces a task by ID.
func (c *Client) ReplaceTask(ctx context.Context, id service.TaskID, rec service.Record) (service.Task, error) {
	return c.send(ctx, http.MethodPut, c.endpoint(strconv.FormatInt(int64(id), 10)), rec, fmt.Sprintf("task %d", id))
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id service.TaskID) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(strconv.FormatInt(int64(id), 10)), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, fmt.Sprintf("task %d", id))
	return err
}

// FetchPhoto downloads a stored photo. photoURL is the reference returned
// with the task (e.g. /uploads/cat.png).
func (c *Client) FetchPhoto(ctx context.Context, photoURL, password string) ([]byte, error) {
	filename := path.Base(photoURL)
	if photoURL == "" || filename == "." || filename == "/" {
		return nil, service.Validationf(nil, "invalid photo reference: %q", photoURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.endpoint("uploads", filename)
	if password != "" {
		u += "?" + url.Values{"fotoSenha": {password}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, "photo "+filename)
}

func (c *Client) send(ctx context.Context, method, u string, rec service.Record, what string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, contentType, err := encodeRecord(rec)
	if err != nil {
		return service.Task{}, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return service.Task{}, err
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.do(req, what)
	if err != nil {
		return service.Task{}, err
	}
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return service.Task{}, service.Validationf(err, "decode task: %v", err)
	}
	return w.toTask()
}

// encodeRecord builds the multipart form the API expects: scalar fields plus
// an optional "foto" file part.
func encodeRecord(rec service.Record) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"titulo", rec.Title},
		{"descricao", rec.Description},
		{"concluida", strconv.FormatBool(rec.Completed())},
	}
	if rec.PhotoPassword != "" {
		fields = append(fields, [2]string{"fotoSenha", rec.PhotoPassword})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if rec.Photo != nil {
		part, err := mw.CreateFormFile("foto", rec.Photo.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(rec.Photo.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// do sends req and returns the response body of a 2xx response.
func (c *Client) do(req *http.Request, what string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(err, what)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, wrapError(err, what)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, MaxResponseSize+1))
	if err != nil {
		return nil, wrapError(err, what)
	}
	if len(body) > MaxResponseSize {
		return nil, service.Validationf(nil, "%s: response exceeds %d bytes", what, MaxResponseSize)
	}
	return body, nil
}

func (c *Client) endpoint(elems ...string) string {
	return c.base.JoinPath(append([]string{ResourcePath}, elems...)...).String()
}

// wrapError classifies transport and HTTP status errors.
func wrapError(err error, what string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.Transportf(err, "%s: request timed out", what)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status := fmt.Sprintf("%d %s", apiErr.Code, http.StatusText(apiErr.Code))
		switch apiErr.Code {
		case http.StatusNotFound:
			return service.NotFoundf("%s not found", what)
		case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
			return service.Validationf(err, "%s rejected: %s", what, status)
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.Unauthorizedf("%s: %s", what, status)
		default:
			return service.Transportf(err, "%s: server error: %s", what, status)
		}
	}

	return service.Transportf(err, "%s: %v", what, err)
}
