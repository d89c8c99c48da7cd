// Package client talks to the two recipe sources over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/types"
)

// DefaultTimeout bounds a single logical request, retries included
const DefaultTimeout = 20 * time.Second

type timeoutKey struct{}

// WithTimeout overrides the client's default timeout for calls made with ctx
func WithTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, timeoutKey{}, d)
}

func timeoutFrom(ctx context.Context, def time.Duration) time.Duration {
	if d, ok := ctx.Value(timeoutKey{}).(time.Duration); ok && d > 0 {
		return d
	}
	return def
}

// Options configures a source client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// MaxRetryTime caps how long idempotent GETs keep retrying. Zero disables retries.
	MaxRetryTime time.Duration
	Limiter      *rate.Limiter
	Logger       logrus.FieldLogger
}

type base struct {
	baseURL      string
	timeout      time.Duration
	http         *http.Client
	maxRetryTime time.Duration
	limiter      *rate.Limiter
	log          logrus.FieldLogger
}

func newBase(opts Options, component string) base {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return base{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:      timeout,
		http:         hc,
		maxRetryTime: opts.MaxRetryTime,
		limiter:      opts.Limiter,
		log:          logger.WithField("component", component),
	}
}

func (b *base) endpoint(path string, query url.Values) string {
	u := b.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs an idempotent GET, retrying transient failures
func (b *base) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutFrom(ctx, b.timeout))
	defer cancel()

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint(path, query), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		body, err = b.do(req, op)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			b.log.WithFields(logrus.Fields{"op": op, "attempt": attempt}).WithError(err).Warn("transient failure, retrying")
		}
		return err
	}

	if b.maxRetryTime <= 0 {
		if err := operation(); err != nil {
			return nil, unwrapPermanent(err)
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = b.maxRetryTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		// the retry loop reports a fired deadline as the bare context error
		var netErr *types.NetworkError
		if ctx.Err() != nil && !errors.As(err, &netErr) {
			err = &types.NetworkError{Op: op, Err: err}
		}
		return nil, err
	}
	return body, nil
}

// postForm sends an urlencoded form once
func (b *base) postForm(ctx context.Context, op, path string, form url.Values) ([]byte, error) {
	return b.post(ctx, op, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// postJSON sends a JSON body once
func (b *base) postJSON(ctx context.Context, op, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}
	return b.post(ctx, op, path, "application/json", bytes.NewReader(data))
}

func (b *base) post(ctx context.Context, op, path, contentType string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutFrom(ctx, b.timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return b.do(req, op)
}

func (b *base) do(req *http.Request, op string) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(req.Context()); err != nil {
			return nil, &types.NetworkError{Op: op, Err: err}
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, &types.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.NetworkError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	b.log.WithFields(logrus.Fields{
		"op":      op,
		"method":  req.Method,
		"status":  resp.StatusCode,
		"latency": time.Since(start),
	}).Debug("source request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.ServerError{Op: op, Status: resp.StatusCode, Message: envelopeMessage(body)}
	}
	if ok := gjson.GetBytes(body, "success"); ok.Exists() && !ok.Bool() {
		return nil, &types.ServerError{Op: op, Status: resp.StatusCode, Message: envelopeMessage(body)}
	}
	return body, nil
}

// envelopeMessage pulls the human readable failure from a backend envelope
func envelopeMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	doc := gjson.ParseBytes(body)
	if msg := strings.TrimSpace(doc.Get("error").String()); msg != "" {
		return msg
	}
	if errs := doc.Get("errors"); errs.IsArray() {
		var parts []string
		for _, e := range errs.Array() {
			if s := strings.TrimSpace(e.String()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return strings.TrimSpace(doc.Get("message").String())
}

// records extracts the array at path as raw records
func records(op string, body []byte, path string) ([]json.RawMessage, error) {
	arr := gjson.GetBytes(body, path)
	if !arr.IsArray() {
		return nil, &types.ServerError{Op: op, Status: http.StatusOK, Message: "response is missing the " + path + " array"}
	}
	items := arr.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out, nil
}

func retryable(err error) bool {
	switch e := err.(type) {
	case *types.NetworkError:
		return true
	case *types.ServerError:
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}
	return err
}
