package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the current session credential at request time.
// Both the REST client and the push subscriber read it; a single owner
// (login/logout) is responsible for what it returns.
type TokenSource func() string

// APIError is a server-rejected request, carrying the best available
// human-readable message: the server's own message field when present,
// else the status text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// API is the REST client for the admin backend. The bearer credential
// is attached centrally here, never at individual call sites.
type API struct {
	BaseURL string
	HTTP    *http.Client
	Token   TokenSource
}

func NewAPI(baseURL string, token TokenSource) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Token:   token,
	}
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login authenticates and returns the bearer token. Storing it behind
// the TokenSource is the caller's job.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	var resp loginResponse
	if err := a.doJSON(ctx, http.MethodPost, "/Auth/login", nil, payload, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (a *API) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return a.do(ctx, method, path, query, contentType, body, out)
}

// Upload is one file attached to a multipart mutation.
type Upload struct {
	Filename string
	Data     []byte
}

// doMultipart sends text fields plus zero or more image attachments,
// the payload shape the article endpoints accept.
func (a *API) doMultipart(ctx context.Context, method, path string, query url.Values, fields map[string]string, uploads []Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, up := range uploads {
		part, err := w.CreateFormFile("images", up.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(up.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return a.do(ctx, method, path, query, w.FormDataContentType(), &buf, out)
}

func (a *API) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	endpoint := a.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if a.Token != nil {
		if token := a.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: serverMessage(data, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func idQuery(id int) url.Values {
	return url.Values{"id": []string{fmt.Sprintf("%d", id)}}
}

// serverMessage prefers the server-supplied message, falling back to
// generic status text.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
