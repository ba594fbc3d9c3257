package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// Identity headers are only ever set by the gateway's auth gate.
var identityHeaders = []string{"X-User-ID", "X-User-Type", "X-Username"}

// ProxyOptions tunes the proxy.
type ProxyOptions struct {
	BreakerThreshold int
	BreakerOpenFor   time.Duration
	// Protect runs before forwarding on protected routes and must abort the
	// context to reject the request.
	Protect gin.HandlerFunc
}

type backend struct {
	svc     *Service
	proxy   *httputil.ReverseProxy
	breaker *Breaker
}

// Proxy forwards requests to the backend chosen by the routing table. Each
// backend has its own transport and breaker, so one failing service does
// not affect routes of another.
type Proxy struct {
	table    *Table
	backends map[string]*backend
	protect  gin.HandlerFunc
	log      zerolog.Logger
}

// NewProxy builds one reverse proxy per service in table.
func NewProxy(table *Table, opts ProxyOptions, log zerolog.Logger) *Proxy {
	p := &Proxy{
		table:    table,
		backends: make(map[string]*backend, len(table.services)),
		protect:  opts.Protect,
		log:      log.With().Str("component", "proxy").Logger(),
	}
	for name, svc := range table.services {
		b := &backend{svc: svc, breaker: NewBreaker(opts.BreakerThreshold, opts.BreakerOpenFor)}
		b.proxy = p.newReverseProxy(b)
		p.backends[name] = b
	}
	return p
}

func (p *Proxy) newReverseProxy(b *backend) *httputil.ReverseProxy {
	target := b.svc.target
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			// Path and query are forwarded verbatim under the target's base.
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: b.svc.Timeout,
		},
		ModifyResponse: func(resp *http.Response) error {
			switch resp.StatusCode {
			case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				b.breaker.Failure()
			default:
				b.breaker.Success()
			}
			// The gateway owns correlation and CORS headers; drop the
			// backend's copies so clients never see two values.
			resp.Header.Del(response.HeaderRequestID)
			for k := range resp.Header {
				if strings.HasPrefix(k, "Access-Control-") {
					resp.Header.Del(k)
				}
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			status, code := classifyProxyError(err)
			if status != 0 {
				b.breaker.Failure()
			} else {
				// The client went away; answer 502 without counting it
				// against the backend.
				status, code = http.StatusBadGateway, response.ErrBadGateway
			}
			p.log.Warn().Err(err).
				Str("service", b.svc.Name).
				Str("request_id", r.Header.Get(response.HeaderRequestID)).
				Int("status", status).
				Msg("Backend request failed")
			response.WriteFail(w, r.Header.Get(response.HeaderRequestID), status, code)
		},
	}
}

// classifyProxyError maps transport failures to gateway statuses. It returns
// 0 when the inbound request was cancelled by the client.
func classifyProxyError(err error) (int, response.ErrCode) {
	if errors.Is(err, context.Canceled) {
		return 0, ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, response.ErrGatewayTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return http.StatusGatewayTimeout, response.ErrGatewayTimeout
	}
	return http.StatusBadGateway, response.ErrBadGateway
}

// Handle is the gin handler for every path not served by the gateway itself.
func (p *Proxy) Handle(c *gin.Context) {
	route, svc, ok := p.table.Match(c.Request.URL.Path)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	for _, h := range identityHeaders {
		c.Request.Header.Del(h)
	}
	if route.Protected && p.protect != nil {
		p.protect(c)
		if c.IsAborted() {
			return
		}
	}

	b := p.backends[svc.Name]
	if !b.breaker.Allow() {
		c.Header("Retry-After", strconv.Itoa(max(b.breaker.RetryAfter(), 1)))
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), svc.Timeout)
	defer cancel()

	b.proxy.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
}

// BreakerState returns the breaker state of the named service.
func (p *Proxy) BreakerState(name string) string {
	if b, ok := p.backends[name]; ok {
		return b.breaker.State()
	}
	return BreakerClosed
}
