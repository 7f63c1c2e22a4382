package http

import (
	"container/list"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/amqp"
	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/core"
	"github.com/yeoyun/SpendingAnalysis/internal/storage"
)

const (
	summaryCacheSize = 64
	summaryCacheTTL  = 5 * time.Minute

	rateLimitPerMinute = 60
)

// TransactionStore is the persistence surface the HTTP layer needs for
// transaction data.
type TransactionStore interface {
	ReplaceTransactions(ctx context.Context, txs []core.Transaction) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListTransactionsInWindow(ctx context.Context, w core.Window) ([]core.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)
}

// ReportStore reads persisted analysis reports.
type ReportStore interface {
	LatestReport(ctx context.Context, mode string) (storage.SavedReport, error)
}

// ReportQueue publishes asynchronous report generation requests. It is nil
// when the broker is not configured, in which case report requests run
// synchronously via ReportRunner.
type ReportQueue interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// ReportRunner handles a report request in-process. Used as the fallback
// when no queue is configured.
type ReportRunner interface {
	HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

type cacheEntry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// lruCache is a small TTL cache with LRU eviction. Expired entries are
// dropped lazily on Get and swept periodically by CleanExpired.
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*cacheEntry[T])
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return zero, false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

func (c *lruCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry[T])
		entry.value = value
		entry.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}
	for len(c.items) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*cacheEntry[T])
		c.order.Remove(oldest)
		delete(c.items, entry.key)
	}
	el := c.order.PushFront(&cacheEntry[T]{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.items[key] = el
}

func (c *lruCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *lruCache[T]) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for el := c.order.Back(); el != nil; {
		entry := el.Value.(*cacheEntry[T])
		prev := el.Prev()
		if now.After(entry.expiresAt) {
			c.order.Remove(el)
			delete(c.items, entry.key)
		}
		el = prev
	}
}

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)
	recent := rl.requests[client][:0]
	for _, t := range rl.requests[client] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= rl.limit {
		rl.requests[client] = recent
		return false
	}
	rl.requests[client] = append(recent, now)
	return true
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for client, times := range rl.requests {
				recent := times[:0]
				for _, t := range times {
					if t.After(cutoff) {
						recent = append(recent, t)
					}
				}
				if len(recent) == 0 {
					delete(rl.requests, client)
				} else {
					rl.requests[client] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Server exposes the analysis API over HTTP.
type Server struct {
	http.Server

	transactions TransactionStore
	reports      ReportStore
	queue        ReportQueue
	runner       ReportRunner
	params       analysis.Params

	summaryCache *lruCache[analysis.Summary]
	limiter      *rateLimiter

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer wires the API routes. queue may be nil; report requests then run
// synchronously through runner.
func NewServer(addr string, transactions TransactionStore, reports ReportStore, queue ReportQueue, runner ReportRunner, params analysis.Params) *Server {
	s := &Server{
		transactions:     transactions,
		reports:          reports,
		queue:            queue,
		runner:           runner,
		params:           params,
		summaryCache:     newLRUCache[analysis.Summary](summaryCacheSize, summaryCacheTTL),
		limiter:          newRateLimiter(rateLimitPerMinute, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /transactions/import", s.handleImport)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/reports", s.handleRequestReport)
	mux.HandleFunc("GET /api/reports/latest", s.handleLatestReport)
	mux.HandleFunc("GET /api/persona", s.handlePersona)
	mux.HandleFunc("GET /api/export.md", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.withSecurityHeaders(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.cacheCleanupLoop()
	return s
}

func (s *Server) cacheCleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCacheCleanup:
			return
		case <-ticker.C:
			s.summaryCache.CleanExpired()
		}
	}
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.stop()
	})
	return s.Server.Shutdown(ctx)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		client := clientIP(r)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		if r.Method == http.MethodPost && !s.limiter.allow(client) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			slog.WarnContext(r.Context(), "request rate limited",
				"request_id", requestID,
				"client_ip", client,
				"path", r.URL.Path)
			return
		}

		slog.InfoContext(r.Context(), "request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", client)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.InfoContext(r.Context(), "request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.transactions.CountTransactions(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}
