package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultSearchSessions = 256
	maxRestoreBytes       = 32 << 20
	limiterClients        = 1024
)

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	SearchSessions int
	// RateLimit is in requests per second per client; zero turns it off.
	RateLimit float64
	RateBurst int
	Clock     func() time.Time
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.SearchSessions <= 0 {
		c.SearchSessions = DefaultSearchSessions
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

func NewServer(config ServerConfig, h *RecordHandler) *http.Server {
	config = config.withDefaults()
	mux := http.NewServeMux()
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	route := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, m.instrument(pattern, h.limit(withTimeout(config.RequestTimeout, handler))))
	}
	route("/ping", ping)
	route("/records", h.records)
	route("/records/", h.recordByKey)
	route("/search", h.search)
	route("/backup", h.backup)
	route("/restore", h.restore)
	route("/print", h.print)
	route("/notices", h.notices)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	server := http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: mux,
	}
	return &server
}

/* Tests the http server connection.  */
func ping(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if method == http.MethodGet {
		w.WriteHeader(http.StatusNoContent)
		return
	} else {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

func withTimeout(timeout time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

type rateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *lru.Cache[string, *rate.Limiter]
}

func newRateLimiter(perSecond float64, burst int) (*rateLimiter, error) {
	if perSecond <= 0 {
		return nil, nil
	}
	clients, err := lru.New[string, *rate.Limiter](limiterClients)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}
	return &rateLimiter{limit: rate.Limit(perSecond), burst: burst, clients: clients}, nil
}

func (rl *rateLimiter) allow(client string) bool {
	limiter, ok := rl.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		// Another request of the same client may have raced us here.
		if prev, found, _ := rl.clients.PeekOrAdd(client, limiter); found {
			limiter = prev
		}
	}
	return limiter.Allow()
}

func clientOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library_register",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "library_register",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *metrics) instrument(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), next))
}
