package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/kbukum/ribbitkit/credentials"
	"github.com/kbukum/ribbitkit/logger"
	"github.com/kbukum/ribbitkit/signing"
)

// Accept type used by signed streaming URLs.
const signedURLAccept = "audio/mpeg"

// Client signs and dispatches requests to the Ribbit REST platform. It holds
// no per-call state: credentials, endpoint and proxy are read from the
// source on every call, so one Client is safe for concurrent use.
type Client struct {
	src        credentials.Source
	config     Config
	signer     *signing.Signer
	httpClient *http.Client
	log        *logger.Logger
	tel        *telemetry
}

// New creates a client reading credentials from src.
func New(src credentials.Source, cfg Config, opts ...Option) (*Client, error) {
	if src == nil {
		return nil, errors.New("httpclient: credential source is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.signer == nil {
		o.signer = signing.NewSigner()
	}

	rt := o.transport
	if rt == nil {
		t, err := newTransport(src, cfg)
		if err != nil {
			return nil, err
		}
		rt = t
	}

	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("httpclient: telemetry: %w", err)
	}

	return &Client{
		src:    src,
		config: cfg,
		signer: o.signer,
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
			// Location is part of the result, so redirects are never followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: o.log.WithComponent("httpclient"),
		tel: tel,
	}, nil
}

func newTransport(src credentials.Source, cfg Config) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		t.TLSClientConfig = tlsCfg
	}
	t.Proxy = proxyFunc(src, cfg.ProxyFromEnvironment)
	return t, nil
}

// Get performs a signed GET.
func (c *Client) Get(ctx context.Context, uri string, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodGet, uri, opts))
}

// Delete performs a signed DELETE.
func (c *Client) Delete(ctx context.Context, uri string, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodDelete, uri, opts))
}

// Post sends payload as JSON. A nil payload sends no body. Create-style
// endpoints answer with a Location, available through Response.Value.
func (c *Client) Post(ctx context.Context, payload any, uri string, opts ...CallOption) (*Response, error) {
	req := Request{Method: http.MethodPost, URI: uri, Payload: payload, Accept: "*/*"}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}

// Put sends payload as JSON.
func (c *Client) Put(ctx context.Context, payload any, uri string, opts ...CallOption) (*Response, error) {
	req := Request{Method: http.MethodPut, URI: uri, Payload: payload}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}

// PostBinary uploads raw bytes verbatim, e.g. a media file.
func (c *Client) PostBinary(ctx context.Context, raw []byte, uri string, opts ...CallOption) (*Response, error) {
	if raw == nil {
		raw = []byte{}
	}
	req := Request{Method: http.MethodPost, URI: uri, Raw: raw, Accept: "*/*"}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}

// GetToSink streams the response body of a signed GET into sink without
// buffering it. On failure after bytes were written the error reports
// Partial and the sink needs cleanup by the caller.
func (c *Client) GetToSink(ctx context.Context, uri string, sink io.Writer, accept string) (*Response, error) {
	if sink == nil {
		return nil, NewGenericError(uri, "sink is required", nil)
	}
	req := Request{Method: http.MethodGet, URI: uri, Accept: accept}
	return c.dispatch(ctx, req, sink)
}

// GetToFile streams a signed GET into a new file at path. The file is
// removed if the download fails.
func (c *Client) GetToFile(ctx context.Context, uri, path, accept string) (resp *Response, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, NewGenericError(uri, "create download file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewGenericError(uri, "close download file", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return c.GetToSink(ctx, uri, f, accept)
}

// SignedURL returns uri with a signed GET embedded as the "h" query
// parameter, for handing to a player that fetches the media itself. No
// request is made.
func (c *Client) SignedURL(uri string) (string, error) {
	target := c.resolve(uri)
	sig, err := c.signer.Sign(http.MethodGet, target, nil, nil, c.src.Credentials())
	if err != nil {
		return "", NewInvalidURLError(target, err)
	}
	lines := strings.Join([]string{
		"Accept: " + signedURLAccept,
		"Authorization: " + sig.Header,
		"User-Agent: " + c.config.UserAgent,
	}, "|")

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "h=" + signing.PercentEncode(lines), nil
}

// Do sends req and buffers the response. Protocol errors are returned
// together with the Response that produced them.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.dispatch(ctx, req, nil)
}

func buildRequest(method, uri string, opts []CallOption) Request {
	req := Request{Method: method, URI: uri}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// resolve makes uri absolute against the current endpoint.
func (c *Client) resolve(uri string) string {
	if strings.HasPrefix(uri, "http") {
		return uri
	}
	return credentials.WithTrailingSlash(c.src.Endpoint()) + strings.TrimPrefix(uri, "/")
}

func (c *Client) dispatch(ctx context.Context, req Request, sink io.Writer) (*Response, error) {
	method := strings.ToUpper(req.Method)
	target := c.resolve(req.URI)

	body, contentType, err := encodeBody(method, &req)
	if err != nil {
		return nil, NewGenericError(target, err.Error(), err)
	}

	creds := c.src.Credentials()
	sig, err := c.signer.Sign(method, target, body, req.XAuth, creds)
	if err != nil {
		if errors.Is(err, signing.ErrInvalidURL) {
			return nil, NewInvalidURLError(target, err)
		}
		return nil, NewGenericError(target, "sign request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, NewInvalidURLError(target, err)
	}
	if len(body) == 0 {
		httpReq.Body = http.NoBody
		httpReq.ContentLength = 0
	}
	accept := req.Accept
	if accept == "" {
		accept = DefaultAccept
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("Authorization", sig.Header)
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	if len(body) > 0 && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	requestID := uuid.NewString()
	log := c.log.WithFields(map[string]interface{}{
		logger.FieldRequestID: requestID,
		logger.FieldMethod:    method,
		logger.FieldURI:       target,
	})
	log.Debug("signed request", logger.Fields(
		"nonce", sig.Nonce,
		"timestamp", sig.Timestamp,
		"body_bytes", len(body),
		"user_token", creds.HasAccessToken(),
	))

	started := time.Now()
	ctx, span := c.tel.start(ctx, method, target, requestID)
	resp, err := c.roundTrip(ctx, httpReq, target, sink)
	elapsed := time.Since(started)
	c.tel.end(ctx, span, method, resp, err, elapsed)

	fields := map[string]interface{}{logger.FieldDuration: elapsed.Milliseconds()}
	if resp != nil {
		fields[logger.FieldStatus] = resp.StatusCode
		if resp.Location != "" {
			fields[logger.FieldLocation] = resp.Location
		}
		if sink != nil {
			fields[logger.FieldBytes] = resp.Written
		}
	}
	if err != nil {
		fields[logger.FieldKind] = KindOf(err).String()
		log.Warn("request failed", logger.MergeWithError(fields, err))
		return resp, err
	}
	log.Debug("response", fields)
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, httpReq *http.Request, target string, sink io.Writer) (*Response, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, target, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header.Clone(),
		Location:   httpResp.Header.Get("Location"),
	}

	if sink == nil {
		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return resp, transportError(ctx, target, err)
		}
		resp.Body = data
		if classErr := Classify(resp.StatusCode, target, data); classErr != nil {
			return resp, classErr
		}
		return resp, nil
	}

	// Error bodies are small and explain the failure; they never reach the
	// sink.
	if classErr := classifyStatus(resp.StatusCode, target, nil); classErr != nil {
		data, _ := io.ReadAll(httpResp.Body)
		resp.Body = data
		return resp, classifyStatus(resp.StatusCode, target, data)
	}

	cw := &countingWriter{w: sink}
	_, err = io.Copy(cw, httpResp.Body)
	resp.Written = cw.n
	if err != nil {
		var e *Error
		if cw.err != nil {
			e = NewGenericError(target, "write to sink", cw.err)
		} else {
			e = transportError(ctx, target, err)
		}
		e.StatusCode = resp.StatusCode
		e.Partial = cw.n > 0
		return resp, e
	}
	return resp, nil
}

// encodeBody returns the request body and its content type. Only POST and
// PUT carry a body.
func encodeBody(method string, req *Request) ([]byte, string, error) {
	if !req.hasBody() {
		return nil, "", nil
	}
	if method != http.MethodPost && method != http.MethodPut {
		return nil, "", fmt.Errorf("%s requests cannot carry a body", method)
	}
	if req.hasPayload() && req.Raw != nil {
		return nil, "", errors.New("payload and raw body are mutually exclusive")
	}
	if req.Raw != nil {
		return req.Raw, req.ContentType, nil
	}

	data, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode payload: %w", err)
	}
	ct := req.ContentType
	if ct == "" {
		ct = "application/json"
	}
	return data, ct, nil
}

// transportError classifies a failure that produced no usable response.
// A cancelled or expired context is reported as a timeout.
func transportError(ctx context.Context, target string, err error) *Error {
	if ctx.Err() != nil {
		return NewTimeoutError(target, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NewTimeoutError(target, err)
	}
	// A proxy refusing CONNECT surfaces as an error carrying its status text.
	if strings.Contains(err.Error(), http.StatusText(http.StatusProxyAuthRequired)) {
		return NewProxyAuthError(target, err)
	}
	return NewConnectionError(target, err)
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err != nil {
		cw.err = err
	}
	return n, err
}
