package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseSize = 10 << 20

type Options struct {
	BaseURL string
	Timeout time.Duration
	Session Session
	// OnUnauthorized 在收到 401 并清除 token 之后调用
	OnUnauthorized func()
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

type Client struct {
	baseURL        *url.URL
	session        Session
	onUnauthorized func()
	httpClient     *http.Client
	logger         *slog.Logger
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   io.Reader
	Header http.Header
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Timeout > 0 {
		// 复制一份，避免修改调用方的 client
		c := *httpClient
		c.Timeout = opts.Timeout
		httpClient = &c
	}

	session := opts.Session
	if session == nil {
		session = NewMemorySession("")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:        base,
		session:        session,
		onUnauthorized: opts.OnUnauthorized,
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

func (c *Client) Session() Session {
	return c.session
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do 发送请求并把信封中的 data 解码到 out。out 为 nil 时忽略 data
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path, req.Query), req.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: req.Method, Path: req.Path, Message: genericNetworkMessage, Err: err}
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind, msg := KindNetwork, genericNetworkMessage
		if isTimeout(err) {
			kind, msg = KindTimeout, genericTimeoutMessage
		}
		c.logger.Debug("请求失败", "method", req.Method, "path", req.Path, "kind", kind, "error", err)
		return &Error{Kind: kind, Method: req.Method, Path: req.Path, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		kind, msg := KindNetwork, genericNetworkMessage
		if isTimeout(err) {
			kind, msg = KindTimeout, genericTimeoutMessage
		}
		return &Error{Kind: kind, Status: resp.StatusCode, Method: req.Method, Path: req.Path, Message: msg, Err: err}
	}
	c.logger.Debug("已完成请求", "method", req.Method, "path", req.Path, "status", resp.StatusCode, "duration", time.Since(start))

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("清除 token 失败", "error", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = genericAuthMessage
		}
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Method: req.Method, Path: req.Path, Message: msg}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = genericServerMessage
		}
		return &Error{Kind: KindServer, Status: resp.StatusCode, Method: req.Method, Path: req.Path, Message: msg}
	}

	if decodeErr != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Method: req.Method, Path: req.Path, Message: genericServerMessage, Err: decodeErr}
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Method: req.Method, Path: req.Path, Message: genericServerMessage, Err: err}
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) PatchJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.Do(ctx, Request{Method: method, Path: path, Body: r, Header: header}, out)
}

type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Form 是 multipart 请求体，字段按 Fields 的顺序写入
type Form struct {
	Fields [][2]string
	Files  []FormFile
}

func (f *Form) Set(key, value string) {
	f.Fields = append(f.Fields, [2]string{key, value})
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, kv := range f.Fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.Files {
		w, err := mw.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(w, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	return c.sendMultipart(ctx, http.MethodPost, path, form, out)
}

func (c *Client) PatchMultipart(ctx context.Context, path string, form *Form, out any) error {
	return c.sendMultipart(ctx, http.MethodPatch, path, form, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form *Form, out any) error {
	if form == nil {
		form = &Form{}
	}
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	return c.Do(ctx, Request{Method: method, Path: path, Body: body, Header: header}, out)
}
