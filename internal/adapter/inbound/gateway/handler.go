// Package gateway implements the data-plane proxy pipeline: authenticate,
// rate-limit, route, forward, and relay the upstream response back to the
// client.
package gateway

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
	"github.com/sentinelgate/gatekeep/internal/domain/proxyerr"
	"github.com/sentinelgate/gatekeep/internal/domain/ratelimit"
	"github.com/sentinelgate/gatekeep/internal/domain/route"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/telemetry"
)

// hopByHopHeaders is the fixed set that must never be forwarded in either
// direction (RFC 2616 Section 13.5.1).
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// forwardableMethods is the fixed set of methods the proxy pipeline maps
// as-is; anything else yields UnsupportedMethod.
var forwardableMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

var tracer = telemetry.Tracer("github.com/sentinelgate/gatekeep/internal/adapter/inbound/gateway")

// Handler is the gateway's single http.Handler: every non-health request
// runs through the ten-step pipeline.
type Handler struct {
	Routes     *route.Table
	Auth       *auth.Validator
	Limiter    ratelimit.Limiter
	RateConfig ratelimit.Config
	Metrics    *metrics.Metrics
	Client     *http.Client
	AccessLog  func(r *http.Request, status int, duration time.Duration, upstream string)
}

// New builds a Handler with a shared upstream client pooled per the
// reference numbers: 50 idle connections per host, 90s idle timeout.
func New(routes *route.Table, validator *auth.Validator, limiter ratelimit.Limiter, rateConfig ratelimit.Config, m *metrics.Metrics, timeout time.Duration) *Handler {
	return &Handler{
		Routes:     routes,
		Auth:       validator,
		Limiter:    limiter,
		RateConfig: rateConfig,
		Metrics:    m,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
			},
			// Redirects are the upstream's concern; pass them through
			// to the caller instead of following them transparently.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	start := time.Now()
	ctx, span := tracer.Start(r.Context(), "gateway.proxy",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		))
	defer span.End()
	r = r.WithContext(ctx)

	h.Metrics.Total.Inc()

	upstreamName, err := h.pipeline(w, r)
	duration := time.Since(start)

	status := http.StatusOK
	if err != nil {
		status = proxyerr.HTTPStatus(err)
		span.SetStatus(codes.Error, err.Error())
		h.writeError(w, err)
	}
	if h.AccessLog != nil {
		h.AccessLog(r, status, duration, upstreamName)
	}
}

// pipeline runs steps 2-10 of the proxy pipeline. It returns the matched
// route's upstream URL (for access logging) and a non-nil *proxyerr.Error
// on any step failure. On success pipeline has already streamed the
// upstream response to w; on failure the caller writes the error response
// via writeError.
func (h *Handler) pipeline(w http.ResponseWriter, r *http.Request) (string, error) {
	// 2. Authenticate.
	presentedKey := r.Header.Get("x-api-key")
	if h.Auth.IsEnabled() && !h.Auth.Validate(presentedKey) {
		h.Metrics.Unauthorized.Inc()
		return "", proxyerr.New(proxyerr.Unauthorized, "invalid or missing x-api-key")
	}

	// 3. Rate-limit. An unresolvable client IP fails closed, per spec.
	clientIP := clientIP(r)
	if clientIP == "" {
		h.Metrics.RateLimited.Inc()
		return "", proxyerr.New(proxyerr.RateLimitExceeded, "client ip unavailable")
	}
	result := h.Limiter.Check(ratelimit.FormatKey(ratelimit.KeyTypeIP, clientIP), h.RateConfig)
	if !result.Allowed {
		h.Metrics.RateLimited.Inc()
		w.Header().Set("X-Rate-Limit-Limit", strconv.Itoa(h.RateConfig.MaxRequests))
		w.Header().Set("X-Rate-Limit-Remaining", "0")
		return "", proxyerr.New(proxyerr.RateLimitExceeded, "rate limit exceeded")
	}

	// 4. Route.
	fullPath := "/" + strings.TrimPrefix(r.URL.Path, "/")
	matched, ok := h.Routes.Match(fullPath)
	if !ok {
		h.Metrics.Failed.Inc()
		return "", proxyerr.RouteNotFoundErr(fullPath)
	}
	downstreamPath := route.StripPrefix(matched, fullPath)

	// 5. Build upstream URL.
	upstreamURL := strings.TrimRight(matched.Upstream, "/") + "/" + strings.TrimPrefix(downstreamPath, "/")
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	// 6. Method mapping.
	if !forwardableMethods[r.Method] {
		h.Metrics.Failed.Inc()
		return "", proxyerr.UnsupportedMethodErr(r.Method)
	}

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, r.Body)
	if err != nil {
		h.Metrics.Failed.Inc()
		return "", proxyerr.New(proxyerr.UpstreamRequest, err.Error())
	}

	// 7. Header filtering.
	copyHeaders(outReq.Header, r.Header)
	for _, hdr := range hopByHopHeaders {
		outReq.Header.Del(hdr)
	}
	outReq.Header.Del("Content-Length")
	if outURL := outReq.URL; outURL != nil {
		outReq.Host = outURL.Host
	}

	// 9. Send.
	resp, err := h.Client.Do(outReq)
	if err != nil {
		if urlErrIsTimeout(err) {
			return matched.Upstream, proxyerr.New(proxyerr.UpstreamTimeout, err.Error())
		}
		h.Metrics.Failed.Inc()
		return matched.Upstream, proxyerr.New(proxyerr.UpstreamRequest, err.Error())
	}
	defer resp.Body.Close()

	// 10. Response.
	copyHeaders(w.Header(), resp.Header)
	for _, hdr := range hopByHopHeaders {
		w.Header().Del(hdr)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
	h.Metrics.Successful.Inc()

	return matched.Upstream, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := proxyerr.HTTPStatus(err)
	http.Error(w, err.Error(), status)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func urlErrIsTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	if ue, ok := err.(interface{ Unwrap() error }); ok {
		return urlErrIsTimeout(ue.Unwrap())
	}
	return false
}
