package endpoint

import (
	"net/http"
	"strconv"
	"strings"
)

// Headers set by the Varnish proxy in front of Ontop.
const (
	HeaderCache         = "X-Cache"
	HeaderCacheHits     = "X-Cache-Hits"
	HeaderBackendHealth = "X-Backend-Health"
)

// CacheInfo is what a caching proxy reported about one response. All fields
// are zero when the response did not pass through a cache.
type CacheInfo struct {
	Status        string `json:"status,omitempty"`
	Hits          int    `json:"hits,omitempty"`
	BackendHealth string `json:"backend_health,omitempty"`
}

// Hit reports whether the proxy served the response from cache.
func (c CacheInfo) Hit() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "HIT")
}

// Present reports whether any cache header was set.
func (c CacheInfo) Present() bool {
	return c.Status != "" || c.BackendHealth != ""
}

func cacheInfo(h http.Header) CacheInfo {
	info := CacheInfo{
		Status:        h.Get(HeaderCache),
		BackendHealth: h.Get(HeaderBackendHealth),
	}
	if v := h.Get(HeaderCacheHits); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			info.Hits = n
		}
	}
	return info
}
