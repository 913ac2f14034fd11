package offline

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Strategy names a caching strategy.
type Strategy string

const (
	CacheFirst               Strategy = "cache-first"
	NetworkFirst             Strategy = "network-first"
	StaleWhileRevalidate     Strategy = "stale-while-revalidate"
	NetworkWithCacheFallback Strategy = "network-with-cache-fallback"
)

// strategyTable maps each request class to the strategy that serves it.
var strategyTable = map[Class]Strategy{
	ClassStatic:   CacheFirst,
	ClassDocument: NetworkFirst,
	ClassImage:    StaleWhileRevalidate,
	ClassOther:    NetworkWithCacheFallback,
}

// StrategyFor returns the strategy used for class c.
func StrategyFor(c Class) Strategy {
	if s, ok := strategyTable[c]; ok {
		return s
	}
	return NetworkWithCacheFallback
}

type strategyFunc func(ctx context.Context, req *http.Request, key string) (*Response, error)

func (c *Controller) strategies() map[Strategy]strategyFunc {
	return map[Strategy]strategyFunc{
		CacheFirst:               c.cacheFirst,
		NetworkFirst:             c.networkFirst,
		StaleWhileRevalidate:     c.staleWhileRevalidate,
		NetworkWithCacheFallback: c.networkFirst,
	}
}

// cacheFirst serves any cached copy, otherwise fetches and keeps a copy of
// a 200 in the static store.
func (c *Controller) cacheFirst(ctx context.Context, req *http.Request, key string) (*Response, error) {
	if cached, err := c.storage.Match(ctx, key); err == nil {
		return cached, nil
	}
	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	c.put(ctx, c.StaticStore(), key, req, resp)
	return resp, nil
}

// networkFirst fetches and keeps a copy of a 200 in the dynamic store; when
// the network fails it falls back to any cached copy.
func (c *Controller) networkFirst(ctx context.Context, req *http.Request, key string) (*Response, error) {
	resp, err := c.fetcher.Fetch(ctx, req)
	if err == nil {
		c.put(ctx, c.DynamicStore(), key, req, resp)
		return resp, nil
	}
	if cached, merr := c.storage.Match(ctx, key); merr == nil {
		c.logger.Debug("offline: network failed, serving cached copy",
			zap.String("key", key), zap.Error(err))
		return cached, nil
	}
	return nil, err
}

// staleWhileRevalidate returns a cached copy at once and refreshes it in
// the background. Without a cached copy the caller waits on the network.
func (c *Controller) staleWhileRevalidate(ctx context.Context, req *http.Request, key string) (*Response, error) {
	cached, err := c.storage.Match(ctx, key)
	if err != nil {
		resp, err := c.fetcher.Fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		c.put(ctx, c.DynamicStore(), key, req, resp)
		return resp, nil
	}

	bg := context.WithoutCancel(ctx)
	refresh := req.Clone(bg)
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		resp, err := c.fetcher.Fetch(bg, refresh)
		if err != nil {
			c.logger.Debug("offline: background refresh failed", zap.String("key", key), zap.Error(err))
			return
		}
		c.put(bg, c.DynamicStore(), key, refresh, resp)
	}()
	return cached, nil
}

// put stores a copy of a shareable 200 response. Failures are logged and
// dropped.
func (c *Controller) put(ctx context.Context, store, key string, req *http.Request, resp *Response) {
	if !resp.OK() {
		return
	}
	if !Shareable(req, resp) {
		c.logger.Debug("offline: response not shareable, not cached", zap.String("key", key))
		return
	}
	st, err := c.storage.Open(ctx, store)
	if err == nil {
		err = st.Put(ctx, key, resp.Clone())
	}
	if err != nil {
		c.logger.Warn("offline: failed to cache response",
			zap.String("store", store), zap.String("key", key), zap.Error(err))
	}
}
