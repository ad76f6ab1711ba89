package restapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"covidtracker.io/internal/models"
)

const noKey = "__no_key__"

// RateLimitMiddleware provides per-API-key rate limiting
type RateLimitMiddleware struct {
	limiters  map[string]*rate.Limiter
	mu        sync.RWMutex
	rateLimit rate.Limit
	burstSize int
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval and
// API key, with bursts of the same size. A negative value disables limiting
// and zero rejects everything.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case requestsPerInterval < 0:
		limit = rate.Inf
	case requestsPerInterval == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(requestsPerInterval))
	}

	rl := &RateLimitMiddleware{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: limit,
		burstSize: max(requestsPerInterval, 0),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go rl.cleanup(5 * time.Minute)

	return rl
}

// getLimiter gets or creates a rate limiter for the given API key
func (rl *RateLimitMiddleware) getLimiter(apiKey string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[apiKey]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[apiKey]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rl.rateLimit, rl.burstSize)
	rl.limiters[apiKey] = limiter
	return limiter
}

// Handler is the HTTP middleware function
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.URL.Query().Get("key")
		if apiKey == "" {
			apiKey = noKey
		}

		if !rl.getLimiter(apiKey).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) retryAfter() time.Duration {
	switch rl.rateLimit {
	case 0:
		return time.Hour
	case rate.Inf:
		return time.Second
	default:
		seconds := math.Ceil(1 / float64(rl.rateLimit))
		return time.Duration(seconds) * time.Second
	}
}

// sendRateLimitExceeded sends a 429 Too Many Requests response
func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter().Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(models.NewResponse(http.StatusTooManyRequests, nil,
		"Rate limit exceeded. Please try again later."))
}

// cleanup drops limiters that are back at full burst, i.e. idle keys
func (rl *RateLimitMiddleware) cleanup(every time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if limiter.Tokens() >= float64(rl.burstSize) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine and waits for it
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
	<-rl.done
}
