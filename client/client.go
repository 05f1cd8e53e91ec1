package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/fileshare/core/file"
	"github.com/dmitrymomot/fileshare/core/logger"
	"github.com/dmitrymomot/fileshare/core/retrieval"
)

// DefaultTimeout bounds requests when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrEmptyBaseURL is returned when constructing a client without a
// backend address.
var ErrEmptyBaseURL = errors.New("client: base URL is required")

// Client talks to the file-sharing backend over HTTP. It implements
// retrieval.Backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialProvider
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithCredentials injects the bearer-token provider.
func WithCredentials(creds CredentialProvider) Option {
	return func(c *Client) {
		if creds != nil {
			c.creds = creds
		}
	}
}

// WithLogger attaches a logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With(logger.Component("client"))
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		creds:   StaticToken(""),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a client from a loaded Config.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := []Option{
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithCredentials(StaticToken(cfg.Token)),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// fileInfoResponse mirrors the backend's file metadata JSON.
type fileInfoResponse struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	Uploader     string    `json:"uploader"`
	UploadTime   time.Time `json:"upload_time"`
	IsPrivate    bool      `json:"is_private"`
	DownloadCode string    `json:"download_code"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	Downloads    int       `json:"downloads"`
	CanPreview   bool      `json:"can_preview"`
}

func (r fileInfoResponse) record(fallbackID string) file.Record {
	id := fallbackID
	if r.ID != 0 {
		id = strconv.FormatInt(r.ID, 10)
	}

	visibility := file.Public
	if r.IsPrivate {
		visibility = file.Private
	}
	return file.Record{
		ID:           id,
		Filename:     r.Filename,
		Owner:        r.Uploader,
		Visibility:   visibility,
		DownloadCode: r.DownloadCode,
		ContentType:  r.FileType,
		CanPreview:   r.CanPreview,
		Size:         r.FileSize,
		Uploaded:     r.UploadTime,
		Downloads:    r.Downloads,
	}
}

// FileInfo implements retrieval.Backend.
func (c *Client) FileInfo(ctx context.Context, fileID, downloadCode string) (file.Record, error) {
	resp, err := c.get(ctx, "/files/"+url.PathEscape(fileID)+"/info", downloadCode)
	if err != nil {
		return file.Record{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return file.Record{}, c.statusError(resp)
	}

	var info fileInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return file.Record{}, fmt.Errorf("decode file info: %w", errors.Join(retrieval.ErrTransport, err))
	}
	return info.record(fileID), nil
}

// DownloadFile implements retrieval.Backend. Each successful call
// increments the server-side download counter exactly once.
func (c *Client) DownloadFile(ctx context.Context, fileID, downloadCode string) (retrieval.Payload, error) {
	resp, err := c.get(ctx, "/files/"+url.PathEscape(fileID), downloadCode)
	if err != nil {
		return retrieval.Payload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return retrieval.Payload{}, c.statusError(resp)
	}
	return c.payload(resp)
}

// PreviewFile implements retrieval.Backend. The response Content-Type is
// passed through verbatim for classification.
func (c *Client) PreviewFile(ctx context.Context, fileID, downloadCode string) (retrieval.Payload, error) {
	resp, err := c.get(ctx, "/files/"+url.PathEscape(fileID)+"/preview", downloadCode)
	if err != nil {
		return retrieval.Payload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return retrieval.Payload{}, wrapDetail(retrieval.ErrUnsupportedType, readDetail(resp.Body))
	}
	if resp.StatusCode != http.StatusOK {
		return retrieval.Payload{}, c.statusError(resp)
	}
	return c.payload(resp)
}

// ListFiles fetches the visible file listing. Download codes appear only
// on the caller's own private files.
func (c *Client) ListFiles(ctx context.Context) ([]file.Record, error) {
	resp, err := c.get(ctx, "/files", "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var infos []fileInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("decode file list: %w", errors.Join(retrieval.ErrTransport, err))
	}

	records := make([]file.Record, len(infos))
	for i, info := range infos {
		records[i] = info.record("")
	}
	return records, nil
}

// UploadRequest describes a file upload.
type UploadRequest struct {
	Filename string
	Content  io.Reader

	// Private gates the file behind a download code.
	Private bool

	// DownloadCode is optional for private uploads; the server
	// generates one when omitted.
	DownloadCode string
}

// UploadResult is the backend's answer to a successful upload.
type UploadResult struct {
	Message      string `json:"message"`
	DownloadCode string `json:"download_code"`
}

// Upload stores a new file.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload form: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return UploadResult{}, fmt.Errorf("upload content: %w", err)
	}
	if req.Private {
		if err := mw.WriteField("is_private", "true"); err != nil {
			return UploadResult{}, fmt.Errorf("upload form: %w", err)
		}
		if req.DownloadCode != "" {
			if err := mw.WriteField("download_code", req.DownloadCode); err != nil {
				return UploadResult{}, fmt.Errorf("upload form: %w", err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("upload form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(ctx, httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return UploadResult{}, errors.Join(retrieval.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UploadResult{}, c.statusError(resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload result: %w", errors.Join(retrieval.ErrTransport, err))
	}
	c.log.InfoContext(ctx, "file uploaded", slog.String("filename", req.Filename))
	return result, nil
}

// Delete removes a file the caller owns.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+url.PathEscape(fileID), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.authorize(ctx, httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return errors.Join(retrieval.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	return nil
}

// User identifies the authenticated caller.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CurrentUser fetches the authenticated caller's identity.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	resp, err := c.get(ctx, "/user/me", "")
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, c.statusError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", errors.Join(retrieval.ErrTransport, err))
	}
	return user, nil
}

// get issues an authorized GET, appending the download code as a query
// parameter when present.
func (c *Client) get(ctx context.Context, path, downloadCode string) (*http.Response, error) {
	target := c.baseURL + path
	if downloadCode != "" {
		target += "?download_code=" + url.QueryEscape(downloadCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(ctx, req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Join(retrieval.ErrTransport, err)
	}
	return resp, nil
}

// authorize attaches the bearer token when one is available. Anonymous
// requests go out without an Authorization header.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if token, ok := c.creds.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// payload drains the response body into a retrieval payload.
func (c *Client) payload(resp *http.Response) (retrieval.Payload, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return retrieval.Payload{}, errors.Join(retrieval.ErrTransport, err)
	}
	return retrieval.Payload{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
	}, nil
}

// statusError maps a non-200 response onto the retrieval taxonomy,
// preserving the server's detail text when it sends one.
func (c *Client) statusError(resp *http.Response) error {
	detail := readDetail(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return wrapDetail(retrieval.ErrNotFound, detail)
	case http.StatusForbidden:
		return wrapDetail(retrieval.ErrCredentialRequired, detail)
	default:
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %s", retrieval.ErrTransport, resp.StatusCode, detail)
	}
}

// readDetail extracts the backend's {"detail": "..."} error body, empty
// when the body is not in that shape.
func readDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}

func wrapDetail(sentinel error, detail string) error {
	if detail == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}
