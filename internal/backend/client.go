package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sky24/web/internal/config"
)

// ErrUnauthorized means the backend rejected the bearer token we sent. The
// caller must treat the session as gone and stop the current operation.
var ErrUnauthorized = errors.New("session expired")

// ErrTransport wraps network and decoding failures.
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx answer carrying the backend's {"error": "..."} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

type File struct {
	Field  string
	Header *multipart.FileHeader
}

type Multipart struct {
	Fields [][2]string
	Files  []File
}

func (m *Multipart) Add(name, value string) {
	m.Fields = append(m.Fields, [2]string{name, value})
}

func (m *Multipart) AddFile(field string, header *multipart.FileHeader) {
	if header == nil {
		return
	}
	m.Files = append(m.Files, File{Field: field, Header: header})
}

type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Multipart
}

type Client struct {
	baseURL     string
	placeholder string
	http        *http.Client
	log         zerolog.Logger
}

func NewClient(cfg config.BackendConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		placeholder: cfg.PlaceholderImage,
		http:        &http.Client{Timeout: cfg.Timeout},
		log:         log.With().Str("component", "backend").Logger(),
	}
}

// Do performs exactly one HTTP call. The token, when non-empty, is sent as a
// bearer credential. out may be nil.
func (c *Client) Do(ctx context.Context, token string, req Request, out any) error {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("backend call failed")
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransport, req.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		return encodeMultipart(req.Multipart)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(raw), "application/json", nil
}

func encodeMultipart(m *Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	for _, f := range m.Files {
		if err := copyFile(w, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func copyFile(w *multipart.Writer, f File) error {
	src, err := f.Header.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Field, err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.Field), escapeQuotes(f.Header.Filename)))
	ct := f.Header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", f.Field, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ResolveImage turns a backend-relative upload path into an absolute URL.
func (c *Client) ResolveImage(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return c.placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	path = strings.ReplaceAll(path, `\`, "/")
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Ping reports whether the backend origin answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}
