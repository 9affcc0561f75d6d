// Package connectivity watches the reachability of the active scheduling
// provider and notifies subscribers on transitions. It replaces ad hoc
// reachability checks with one explicit observable that callers subscribe to
// and dispose of.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProbeFunc reports whether the network dependency is currently reachable.
type ProbeFunc func(ctx context.Context) error

// NewHTTPProbe probes a base URL with a HEAD request. Any response, including
// an error status, counts as reachable; only transport failures count as
// offline.
func NewHTTPProbe(baseURL string, timeout time.Duration) ProbeFunc {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

// Watcher polls a probe on an interval and pushes online/offline transitions
// to subscribers.
type Watcher struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(online bool)
	nextID int
	online bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher builds a watcher; call Start to begin probing. The watcher
// starts out assuming it is online so a healthy boot does not fire a
// spurious transition.
func NewWatcher(probe ProbeFunc, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		probe:    probe,
		interval: interval,
		logger:   logger,
		subs:     make(map[int]func(online bool)),
		online:   true,
		stop:     make(chan struct{}),
	}
}

// Start launches the probe loop.
func (w *Watcher) Start() {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				w.check()
			}
		}
	}()
}

func (w *Watcher) check() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	online := w.probe(ctx) == nil

	w.mu.Lock()
	changed := online != w.online
	w.online = online
	var subs []func(bool)
	if changed {
		for _, fn := range w.subs {
			subs = append(subs, fn)
		}
	}
	w.mu.Unlock()

	if !changed {
		return
	}
	if online {
		w.logger.Info("scheduling provider reachable again")
	} else {
		w.logger.Warn("scheduling provider unreachable")
	}
	for _, fn := range subs {
		fn(online)
	}
}

// Online returns the last observed state.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Subscribe registers a transition callback and returns a cancel func that
// removes it. Callbacks run on the probe goroutine; keep them short.
func (w *Watcher) Subscribe(fn func(online bool)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Close stops the probe loop. Subscriptions are not called afterwards.
func (w *Watcher) Close() {
	w.stopOnce.Do(func() { close(w.stop) })
}
