package web

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	mw "github.com/JonMunkholm/sheetcheck/internal/web/middleware"
)

var rateLimitedMessage = core.UserMessage{
	Message: "Too many requests",
	Action:  "Please wait a minute and try again",
	Code:    "RATE001",
}

// rateLimiter keeps one token bucket per client IP. Each bucket holds perWindow
// tokens and refills at perWindow tokens per window.
type rateLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor

	done chan struct{}
	once sync.Once
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter creates a rate limiter owned by s; Shutdown stops it.
func (s *Server) newRateLimiter(perWindow int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
		window:   window,
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	go rl.evictLoop()
	return rl
}

// reserve takes a token for ip. It returns zero when the request may
// proceed, otherwise how long the client should wait.
func (rl *rateLimiter) reserve(ip string, now time.Time) time.Duration {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	r := v.bucket.ReserveN(now, 1)
	if !r.OK() {
		return rl.window
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

// evictLoop drops buckets idle for a full window, by which point they have
// refilled and are indistinguishable from new ones.
func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > rl.window {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// middleware limits by the client address TrustedRealIP resolved.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait := rl.reserve(mw.ClientIP(r), time.Now()); wait > 0 {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respondErrorJSON(w, rateLimitedMessage, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
