package server

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// One submission every 2 seconds per client, with a small burst for
	// legitimate retries after declines.
	submitRatePerSecond = 0.5
	submitBurst         = 5
)

// SubmitRateLimit throttles payment submissions per client IP. Without a
// configured redis backend every request passes.
func (s *Server) SubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("submit:%s", c.ClientIP())
		res, err := s.limiter.Allow(c.Request.Context(), key, submitRatePerSecond, submitBurst)
		if err != nil {
			// A broken limiter never blocks donations.
			s.log.Warn("submit rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			retry := int(res.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
