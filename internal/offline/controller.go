package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotCached is returned when a request can be served neither from the
// network nor from the cache.
var ErrNotCached = errors.New("offline: not available from network or cache")

// ErrNotInstalled is returned when activating before Install.
var ErrNotInstalled = errors.New("offline: controller is not installed")

// State is the controller lifecycle state.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// DefaultProbe is fetched before priming; when it fails priming is skipped.
const DefaultProbe = "/index.html"

// Options configures a Controller.
type Options struct {
	// Version suffixes the store names, e.g. static-v1.2.7.
	Version string
	// Probe is fetched first during Install. Empty uses DefaultProbe.
	Probe string
	// Critical and Optional are primed into the static store on Install.
	Critical []string
	Optional []string
	// StaticGlobs are doublestar patterns that mark a path as static.
	StaticGlobs []string
	// Concurrency bounds parallel priming fetches. Zero means unbounded.
	Concurrency int
	Logger      *zap.Logger
}

// Controller answers requests from versioned static and dynamic stores.
// It is safe for concurrent use.
type Controller struct {
	storage    Storage
	fetcher    Fetcher
	classifier *Classifier
	handlers   map[Strategy]strategyFunc
	logger     *zap.Logger

	version     string
	probe       string
	critical    []string
	optional    []string
	concurrency int

	mu    sync.Mutex
	state State

	refreshes sync.WaitGroup
}

// New creates a controller in state Parsed.
func New(storage Storage, fetcher Fetcher, opts Options) (*Controller, error) {
	if storage == nil || fetcher == nil {
		return nil, errors.New("offline: storage and fetcher are required")
	}
	if opts.Version == "" {
		return nil, errors.New("offline: version is required")
	}
	globs := opts.StaticGlobs
	if globs == nil {
		globs = DefaultStaticGlobs
	}
	classifier, err := NewClassifier(globs)
	if err != nil {
		return nil, err
	}
	probe := opts.Probe
	if probe == "" {
		probe = DefaultProbe
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		storage:     storage,
		fetcher:     fetcher,
		classifier:  classifier,
		logger:      logger,
		version:     opts.Version,
		probe:       probe,
		critical:    append([]string(nil), opts.Critical...),
		optional:    append([]string(nil), opts.Optional...),
		concurrency: opts.Concurrency,
	}
	c.handlers = c.strategies()
	return c, nil
}

// Version returns the cache version.
func (c *Controller) Version() string { return c.version }

// StaticStore is the name of the current static store.
func (c *Controller) StaticStore() string { return "static-" + c.version }

// DynamicStore is the name of the current dynamic store.
func (c *Controller) DynamicStore() string { return "dynamic-" + c.version }

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Classify returns the class and strategy that Handle would use for req.
func (c *Controller) Classify(req *http.Request) (Class, Strategy) {
	class := c.classifier.Classify(req)
	return class, StrategyFor(class)
}

// Handle serves a GET request through the strategy selected by its class.
// When everything fails an HTML request gets the offline fallback; other
// requests get an error wrapping ErrNotCached.
func (c *Controller) Handle(ctx context.Context, req *http.Request) (*Response, error) {
	class, strategy := c.Classify(req)
	key := Key(req)

	resp, err := c.handlers[strategy](ctx, req, key)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("offline: request failed",
		zap.String("key", key),
		zap.Stringer("class", class),
		zap.String("strategy", string(strategy)),
		zap.Error(err))

	if IsHTML(req) {
		return c.fallback(ctx), nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrNotCached, key, err)
}

// Wait blocks until background refreshes have finished.
func (c *Controller) Wait() {
	c.refreshes.Wait()
}

// ListReport lists the outcome of priming one asset list.
type ListReport struct {
	Cached []string `json:"cached"`
	Failed []string `json:"failed"`
}

// InstallReport describes a completed Install.
type InstallReport struct {
	Skipped  bool       `json:"skipped"`
	Critical ListReport `json:"critical"`
	Optional ListReport `json:"optional"`
}

// Install probes the network and primes the static store with the critical
// and optional assets in parallel. Individual failures are recorded in the
// report and never fail the install; the controller always ends Installed.
func (c *Controller) Install(ctx context.Context) (InstallReport, error) {
	c.setState(StateInstalling)
	defer c.setState(StateInstalled)

	var report InstallReport

	probe, err := c.fetchAsset(ctx, c.probe)
	if err != nil || !probe.OK() {
		c.logger.Warn("offline: network unavailable, skipping priming", zap.String("probe", c.probe), zap.Error(err))
		report.Skipped = true
		return report, nil
	}

	store, err := c.storage.Open(ctx, c.StaticStore())
	if err != nil {
		c.logger.Warn("offline: cannot open static store, skipping priming", zap.Error(err))
		report.Skipped = true
		return report, nil
	}

	critical := make([]bool, len(c.critical))
	optional := make([]bool, len(c.optional))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, asset := range c.critical {
		g.Go(func() error {
			critical[i] = c.prime(ctx, store, asset)
			return nil
		})
	}
	for i, asset := range c.optional {
		g.Go(func() error {
			optional[i] = c.prime(ctx, store, asset)
			return nil
		})
	}
	_ = g.Wait()

	report.Critical = settle(c.critical, critical)
	report.Optional = settle(c.optional, optional)

	c.logger.Info("offline: install complete",
		zap.Int("critical_cached", len(report.Critical.Cached)),
		zap.Int("critical_total", len(c.critical)),
		zap.Int("optional_cached", len(report.Optional.Cached)))
	return report, nil
}

func (c *Controller) prime(ctx context.Context, store Store, asset string) bool {
	resp, err := c.fetchAsset(ctx, asset)
	if err != nil {
		c.logger.Warn("offline: failed to prime asset", zap.String("asset", asset), zap.Error(err))
		return false
	}
	if !resp.OK() {
		c.logger.Warn("offline: asset not primed", zap.String("asset", asset), zap.Int("status", resp.Status))
		return false
	}
	if !Shareable(nil, resp) {
		c.logger.Warn("offline: asset is private, not primed", zap.String("asset", asset))
		return false
	}
	if err := store.Put(ctx, KeyFor(asset), resp); err != nil {
		c.logger.Warn("offline: failed to prime asset", zap.String("asset", asset), zap.Error(err))
		return false
	}
	return true
}

func (c *Controller) fetchAsset(ctx context.Context, asset string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, KeyFor(asset), nil)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(ctx, req)
}

func settle(assets []string, ok []bool) ListReport {
	r := ListReport{Cached: []string{}, Failed: []string{}}
	for i, a := range assets {
		if ok[i] {
			r.Cached = append(r.Cached, a)
		} else {
			r.Failed = append(r.Failed, a)
		}
	}
	return r
}

// Activate deletes every store except the current static and dynamic ones
// and returns the names it removed.
func (c *Controller) Activate(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.state < StateInstalled {
		c.mu.Unlock()
		return nil, ErrNotInstalled
	}
	c.state = StateActivating
	c.mu.Unlock()
	defer c.setState(StateActivated)

	names, err := c.storage.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}

	removed := []string{}
	for _, name := range names {
		if name == c.StaticStore() || name == c.DynamicStore() {
			continue
		}
		ok, err := c.storage.Delete(ctx, name)
		if err != nil {
			return removed, fmt.Errorf("removing store %s: %w", name, err)
		}
		if ok {
			c.logger.Info("offline: removed old store", zap.String("store", name))
			removed = append(removed, name)
		}
	}
	return removed, nil
}

// SkipWaiting activates an installed controller right away. It is a no-op
// once activated.
func (c *Controller) SkipWaiting(ctx context.Context) ([]string, error) {
	switch c.State() {
	case StateActivated, StateActivating:
		return []string{}, nil
	}
	return c.Activate(ctx)
}

// StoreStatus lists the keys held by one store.
type StoreStatus struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

// Status lists every store and its keys.
func (c *Controller) Status(ctx context.Context) ([]StoreStatus, error) {
	names, err := c.storage.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	out := make([]StoreStatus, 0, len(names))
	for _, name := range names {
		st, err := c.storage.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		keys, err := st.Keys(ctx)
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = []string{}
		}
		out = append(out, StoreStatus{Name: name, Keys: keys})
	}
	return out, nil
}

// Reset deletes every store and returns the removed names.
func (c *Controller) Reset(ctx context.Context) ([]string, error) {
	names, err := c.storage.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	removed := []string{}
	for _, name := range names {
		if _, err := c.storage.Delete(ctx, name); err != nil {
			return removed, fmt.Errorf("removing store %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	c.logger.Info("offline: all stores deleted", zap.Int("count", len(removed)))
	return removed, nil
}

// ServeHTTP serves same-origin GET requests through Handle. Other requests
// are passed to the fetcher without touching the cache.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !Intercepts(r) {
		c.passThrough(w, r)
		return
	}
	resp, err := c.Handle(r.Context(), r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	if err := resp.Write(w); err != nil {
		c.logger.Debug("offline: writing response", zap.Error(err))
	}
}

func (c *Controller) passThrough(w http.ResponseWriter, r *http.Request) {
	resp, err := c.fetcher.Fetch(r.Context(), r)
	if err != nil {
		c.logger.Warn("offline: pass-through failed", zap.String("url", r.URL.String()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	resp.Write(w)
}

// Intercepts reports whether r is a same-origin GET request the controller
// should answer. Cross-origin and browser-extension URLs are left alone.
func Intercepts(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Host != "" && !strings.EqualFold(r.URL.Host, r.Host) {
		return false
	}
	u := r.URL.String()
	if strings.Contains(u, "extension") || strings.HasPrefix(u, "chrome-extension") {
		return false
	}
	return true
}
