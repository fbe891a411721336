package middleware

import "github.com/gin-gonic/gin"

// MarkCacheHit flags the response as served from cache. Call it before the
// response body is written.
func MarkCacheHit(c *gin.Context) {
	c.Writer.Header().Set("X-Cache", "HIT")
}

// CacheStatus annotates responses with an X-Cache header so clients and
// dashboards can see cache effectiveness per request. Handlers flip it to
// HIT via MarkCacheHit.
func CacheStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Cache", "MISS")
		c.Next()
	}
}
