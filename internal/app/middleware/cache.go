package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// 缓存条目
type cacheEntry struct {
	Content     []byte
	ContentType string
	Expiration  time.Time
}

// responseCache 每个中间件实例各自的内存缓存
type responseCache struct {
	sync.RWMutex
	items     map[string]cacheEntry
	lastSweep time.Time
}

func (rc *responseCache) get(key string, now time.Time) (cacheEntry, bool) {
	rc.RLock()
	defer rc.RUnlock()
	entry, ok := rc.items[key]
	if !ok || !entry.Expiration.After(now) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (rc *responseCache) put(key string, entry cacheEntry, now time.Time, ttl time.Duration) {
	rc.Lock()
	defer rc.Unlock()
	rc.items[key] = entry
	// 清理过期缓存
	if now.Sub(rc.lastSweep) > ttl {
		for k, e := range rc.items {
			if e.Expiration.Before(now) {
				delete(rc.items, k)
			}
		}
		rc.lastSweep = now
	}
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Expiration time.Duration             // 缓存过期时间
	KeyFunc    func(*gin.Context) string // 自定义缓存键生成函数
}

// DefaultCacheConfig 默认缓存配置
var DefaultCacheConfig = CacheConfig{
	Expiration: 10 * time.Second,
	KeyFunc:    defaultKeyFunc,
}

// 默认缓存键：路径加排序后的查询参数
func defaultKeyFunc(c *gin.Context) string {
	queryParams := c.Request.URL.Query()
	queryKeys := make([]string, 0, len(queryParams))
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var sb strings.Builder
	sb.WriteString(c.Request.URL.Path)
	sb.WriteString("?")
	for _, key := range queryKeys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, value := range values {
			sb.WriteString(key + "=" + value + "&")
		}
	}

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Cache 创建 GET 响应缓存中间件，只缓存 200 响应
func Cache(config ...CacheConfig) gin.HandlerFunc {
	var cfg CacheConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultCacheConfig
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheConfig.Expiration
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheConfig.KeyFunc
	}

	store := &responseCache{items: make(map[string]cacheEntry)}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		now := time.Now()
		if entry, found := store.get(key, now); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Content)
			c.Abort()
			return
		}

		// 缓存未命中，捕获响应
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK {
			store.put(key, cacheEntry{
				Content:     writer.body.Bytes(),
				ContentType: writer.Header().Get("Content-Type"),
				Expiration:  now.Add(cfg.Expiration),
			}, now, cfg.Expiration)
		}
	}
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 同时写入原始响应和缓冲区
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString 同时写入原始响应和缓冲区
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
