package httphandler

import (
	"net/http"

	"github.com/pvolkov/shoply/pkg/kvcache"
)

type CacheStatsSource interface {
	Stats() kvcache.Stats
}

type CacheHandler struct {
	cache CacheStatsSource
}

// RegisterCache mounts the cache introspection route, admin only.
func RegisterCache(
	mux *http.ServeMux,
	cache CacheStatsSource,
	authed func(http.Handler) http.Handler,
) {
	h := CacheHandler{cache: cache}
	mux.Handle(
		"GET /v1/cache/stats",
		authed(RequireAdmin(http.HandlerFunc(h.GetStats))),
	)
}

func (h CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	respondData(w, http.StatusOK, "cache stats retrieved", CacheStats{
		Hits:   stats.Hits,
		Misses: stats.Misses,
		Keys:   stats.Size,
	})
}
