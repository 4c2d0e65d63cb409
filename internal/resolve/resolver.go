// Package resolve performs best-effort reverse DNS for client addresses.
//
// Lookups run on a background worker so a slow or dead resolver never
// delays a refresh. The session cache never expires: client-facing
// addresses are assumed stable for the life of the process, and failed
// lookups are cached as empty so an unresolvable address is attempted
// only once.
package resolve

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"
)

const (
	lookupTimeout = 1 * time.Second
	queueDepth    = 256
)

// Result is one completed lookup. Hostname is empty when the address did
// not resolve; the row keeps showing the raw address in that case.
type Result struct {
	Addr     string
	Hostname string
}

// lookupFunc is swapped out in tests.
type lookupFunc func(ctx context.Context, addr string) ([]string, error)

// Resolver owns the lookup worker and the request queue. The cache itself
// lives with the update loop, which feeds back completed results via
// Results; the resolver only tracks what it has already been asked so
// duplicate requests are cheap.
type Resolver struct {
	logger  *slog.Logger
	lookup  lookupFunc
	pending chan string
	results chan Result
	asked   map[string]struct{}
	cancel  context.CancelFunc
}

// New creates a resolver using the system resolver.
func New(logger *slog.Logger) *Resolver {
	var r net.Resolver
	return newResolver(logger, r.LookupAddr)
}

func newResolver(logger *slog.Logger, lookup lookupFunc) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		logger:  logger,
		lookup:  lookup,
		pending: make(chan string, queueDepth),
		results: make(chan Result, queueDepth),
		asked:   make(map[string]struct{}),
		cancel:  cancel,
	}
	go r.worker(ctx)
	return r
}

// Request queues an address for lookup. Addresses already requested this
// session, local addresses, and non-IP strings are ignored. Safe to call
// only from the update loop.
func (r *Resolver) Request(addr string) {
	if !Resolvable(addr) {
		return
	}
	if _, ok := r.asked[addr]; ok {
		return
	}
	r.asked[addr] = struct{}{}

	select {
	case r.pending <- addr:
	default:
		// Queue full; forget it so a later refresh can retry.
		delete(r.asked, addr)
	}
}

// Results exposes completed lookups for the update loop to drain.
func (r *Resolver) Results() <-chan Result { return r.results }

// Close stops the worker. Queued lookups are abandoned.
func (r *Resolver) Close() { r.cancel() }

func (r *Resolver) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case addr := <-r.pending:
			r.resolveOne(ctx, addr)
		}
	}
}

func (r *Resolver) resolveOne(ctx context.Context, addr string) {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	names, err := r.lookup(lctx, addr)
	host := ""
	if err != nil || len(names) == 0 {
		r.logger.Debug("reverse lookup failed", "addr", addr, "error", err)
	} else {
		host = ShortName(names[0])
	}

	select {
	case r.results <- Result{Addr: addr, Hostname: host}:
	case <-ctx.Done():
	}
}

// Resolvable reports whether an address is worth a reverse lookup:
// a real, non-loopback IP.
func Resolvable(addr string) bool {
	switch addr {
	case "", "localhost", "127.0.0.1", "::1":
		return false
	}
	ip := net.ParseIP(addr)
	return ip != nil && !ip.IsLoopback()
}

// ShortName trims a PTR name to its first label, dropping the trailing
// dot the resolver returns.
func ShortName(ptr string) string {
	ptr = strings.TrimSuffix(ptr, ".")
	if i := strings.IndexByte(ptr, '.'); i >= 0 {
		return ptr[:i]
	}
	return ptr
}
