package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 30 * time.Minute
)

// clientLimiter stores the rate limiter for a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware keeps one token bucket per client IP.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	refillRate rate.Limit
	bucketSize int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiterMiddleware creates a limiter refilling refillRate tokens per second
// into buckets of bucketSize. Call Stop to end its cleanup goroutine.
func NewRateLimiterMiddleware(refillRate float64, bucketSize int) *RateLimiterMiddleware {
	if bucketSize < 1 {
		bucketSize = 1
	}
	rm := &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		refillRate: rate.Limit(refillRate),
		bucketSize: bucketSize,
		stop:       make(chan struct{}),
	}
	go rm.cleanupClients()
	return rm
}

// getClientLimiter retrieves or creates the rate limiter for a given client.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rm.refillRate, rm.bucketSize)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// cleanupClients periodically removes idle client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stop:
			return
		case <-ticker.C:
			if n := rm.prune(time.Now().Add(-limiterIdleTimeout)); n > 0 {
				log.Printf("Rate limiter cleanup removed %d old client entries.", n)
			}
		}
	}
}

// prune drops clients not seen since cutoff and returns how many were removed.
func (rm *RateLimiterMiddleware) prune(cutoff time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, cl := range rm.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

// Stop ends the cleanup goroutine.
func (rm *RateLimiterMiddleware) Stop() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// Limit creates the Gin middleware handler. Limited requests get a 429 in the
// contact form's JSON shape.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()
		if !rm.getClientLimiter(clientKey).Allow() {
			log.Printf("Rate limit exceeded for client %s on %s", clientKey, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
