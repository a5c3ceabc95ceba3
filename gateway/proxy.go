package gateway

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/errors"
	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
	"github.com/kbukum/servicehub/registry"
	"github.com/kbukum/servicehub/server"
)

// statusClientClosedRequest is the nginx convention for a caller that gave up
// before the downstream response arrived.
const statusClientClosedRequest = 499

// Resolver maps a routing name to an active service record.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*registry.Service, error)
}

// Proxy forwards /api/{service}/{path} requests to the resolved backend. The
// relay is transparent: method, query, headers and body pass through in both
// directions, including downstream error statuses.
type Proxy struct {
	resolver Resolver
	client   *http.Client
	timeout  time.Duration
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewProxy creates a proxy over the given resolver.
func NewProxy(resolver Resolver, cfg config.ProxyConfig, metrics *observability.Metrics) *Proxy {
	cfg.ApplyDefaults()
	return &Proxy{
		resolver: resolver,
		// No client-level timeout: each request gets a context deadline, so
		// inbound cancellation aborts the downstream call too.
		client:  &http.Client{},
		timeout: cfg.Timeout,
		log:     logger.WithComponent("proxy"),
		metrics: metrics,
	}
}

// Handle is the gin handler for ANY /api/:service/*path.
func (p *Proxy) Handle(c *gin.Context) {
	name := c.Param("service")
	start := time.Now()

	svc, err := p.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		// A cold cache with an unreachable registry means routing is
		// impossible right now; the caller sees the service as unavailable.
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeRegistryUnreachable {
			err = errors.ServiceUnavailable(name).WithCause(appErr)
		}
		p.fail(c, name, err)
		return
	}

	target := strings.TrimRight(svc.URL(), "/") + c.Param("path")

	ctx, cancel := context.WithTimeout(c.Request.Context(), p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, c.Request.Method, target, c.Request.Body)
	if err != nil {
		p.fail(c, name, errors.InternalRouting(err))
		return
	}
	req.URL.RawQuery = c.Request.URL.RawQuery
	// Carry the inbound length so a known-length body is not re-framed as
	// chunked on the new hop.
	req.ContentLength = c.Request.ContentLength
	copyHeaders(req.Header, c.Request.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		p.failTransport(c, name, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for k, vv := range resp.Header {
		for _, v := range vv {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Writer.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Headers are gone; nothing more to send. Log and account for it.
		p.log.Warn("response relay interrupted", logger.Fields(
			"service", name,
			"error", err.Error(),
		))
	}

	p.metrics.RecordProxy(c.Request.Context(), name, c.Request.Method, resp.StatusCode, time.Since(start))
}

// failTransport classifies a downstream transport error and responds.
func (p *Proxy) failTransport(c *gin.Context, name string, err error) {
	// The caller hanging up is not a downstream fault: log it and close with
	// 499 without a body.
	if c.Request.Context().Err() != nil && !stderrors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
		p.log.Info("client closed request", logger.Fields("service", name))
		c.Status(statusClientClosedRequest)
		c.Abort()
		return
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		p.fail(c, name, errors.UpstreamTimeout(name))
	case isConnectionError(err):
		p.fail(c, name, errors.UpstreamUnreachable(name, err))
	default:
		p.fail(c, name, errors.InternalRouting(err))
	}
}

// fail records the error and writes the mapped response.
func (p *Proxy) fail(c *gin.Context, name string, err error) {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	p.metrics.RecordProxyError(c.Request.Context(), name, code)
	p.log.Warn("proxy request failed", logger.Fields(
		"service", name,
		"method", c.Request.Method,
		"code", code,
		"error", err.Error(),
	))
	server.RespondWithError(c, err)
}

// isConnectionError reports whether err is a connection-level failure
// (refused, reset, DNS) rather than a timeout or a protocol bug.
func isConnectionError(err error) bool {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return false
		}
		return true
	}
	return false
}

// copyHeaders copies inbound headers onto the downstream request, dropping
// Host and Content-Length so the transport recomputes them for the new target.
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if http.CanonicalHeaderKey(k) == "Host" || http.CanonicalHeaderKey(k) == "Content-Length" {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
