package navigator

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
)

// Router resolves paths against the route table, runs the guard on every
// transition, and tracks the current route. It is the terminal client's
// stand-in for the browser's history: one current location per process.
type Router struct {
	routes []Route
	guard  *Guard
	logger *slog.Logger

	mu      sync.Mutex
	current Target
}

// NewRouter creates a router over the given table and guard. The initial
// location is the default landing route, pre-guard.
func NewRouter(routes []Route, guard *Guard, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		routes:  routes,
		guard:   guard,
		logger:  logger,
		current: match(routes, "/"),
	}
}

// Navigate resolves the path, applies the guard, follows at most one redirect
// and returns the route actually arrived at. Redirect targets (login,
// dashboard) are terminal under the guard rules, so one hop suffices.
func (r *Router) Navigate(ctx context.Context, path string) Target {
	target := match(r.routes, path)

	decision := r.guard.Check(ctx, target)
	if decision.Redirect != nil {
		r.logger.Debug("redirecting", "from", target.Path, "to", decision.Redirect.Path)
		target = *decision.Redirect
	}

	r.mu.Lock()
	r.current = target
	r.mu.Unlock()
	return target
}

// Current returns the current location.
func (r *Router) Current() Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ForceLogin moves the current location to the login route, preserving the
// originating path as the post-login redirect target. The request pipeline
// invokes this when a 401 invalidates the session; if the client is already
// on the login route it is a no-op.
func (r *Router) ForceLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.Route.Name == RouteLogin {
		return
	}

	query := url.Values{}
	if origin := r.current.FullPath(); origin != "" {
		query.Set("redirect", origin)
	}

	login := match(r.routes, "/login")
	login.Query = query
	r.current = login
	r.logger.Info("session expired, returning to login", "redirect", query.Get("redirect"))
}
