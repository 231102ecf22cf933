package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ==================== ClientLimiter 客户端限流器 ====================

// ClientLimiter 按客户端维度的令牌桶限流
// 生成接口每次调用都会消耗上游额度，防止单个客户端频繁触发
type ClientLimiter struct {
	limiters sync.Map // key -> *limiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

// limiterEntry 限流条目
type limiterEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewClientLimiter rps <= 0 时不限流
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ClientLimiter{rps: rate.Limit(rps), burst: burst, now: time.Now}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 建议等待时间
}

// Check 消耗一个令牌
func (l *ClientLimiter) Check(key string) CheckResult {
	if l.rps <= 0 {
		return CheckResult{Allowed: true}
	}

	actual, _ := l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)})
	entry := actual.(*limiterEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return CheckResult{Allowed: false, RetryAfter: time.Second}
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		// 不排队，归还令牌
		r.CancelAt(now)
		return CheckResult{Allowed: false, RetryAfter: delay}
	}
	return CheckResult{Allowed: true}
}

// Sweep 清理超过 idle 未访问的条目，返回清理数量
func (l *ClientLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	removed := 0
	l.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ==================== 限流中间件 ====================

// RateLimit 按客户端 IP 限流，超限返回 429
func RateLimit(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := l.Check(c.ClientIP())
		if !result.Allowed {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please retry after " + strconv.Itoa(seconds) + "s",
			})
			return
		}
		c.Next()
	}
}
