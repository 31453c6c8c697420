package navigator

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Session is the slice of the session manager the guard needs.
type Session interface {
	IsAuthenticated() bool
	Hydrate(ctx context.Context) error
	Logout()
}

// Decision is the guard's verdict on a navigation.
type Decision struct {
	Allowed  bool
	Redirect *Target
}

// Guard is evaluated before every route transition. On the very first
// transition of the process it attempts to hydrate a persisted session; after
// that it enforces that protected routes require authentication and that the
// login and registration routes are unreachable once authenticated.
type Guard struct {
	session Session
	logger  *slog.Logger

	login   Route
	landing Route

	// One-shot hydration: concurrent first navigations share a single
	// in-flight hydration, and it never re-runs once complete, even if it
	// failed.
	group    singleflight.Group
	mu       sync.Mutex
	hydrated bool
}

// NewGuard creates a guard over the given session and route table. The table
// must contain the login and dashboard routes, since every redirect the guard
// issues targets one of them; a table without either is a wiring mistake and
// panics at construction.
func NewGuard(session Session, routes []Route, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Guard{session: session, logger: logger}
	var haveLogin, haveLanding bool
	for _, rt := range routes {
		switch rt.Name {
		case RouteLogin:
			g.login = rt
			haveLogin = true
		case RouteDashboard:
			g.landing = rt
			haveLanding = true
		}
	}
	if !haveLogin || !haveLanding {
		panic("navigator: route table must contain login and dashboard routes")
	}
	return g
}

// Check evaluates a navigation to the target and returns allow or a redirect.
// It never blocks beyond the one-shot hydration call.
func (g *Guard) Check(ctx context.Context, target Target) Decision {
	g.ensureHydrated(ctx)

	authenticated := g.session.IsAuthenticated()

	if target.Route.RequiresAuth && !authenticated {
		query := url.Values{}
		query.Set("redirect", target.FullPath())
		g.logger.Debug("navigation denied", "route", target.Route.Name)
		return Decision{Redirect: &Target{Route: g.login, Path: g.login.Path, Query: query}}
	}

	if (target.Route.Name == RouteLogin || target.Route.Name == RouteRegister) && authenticated {
		return Decision{Redirect: &Target{Route: g.landing, Path: g.landing.Path}}
	}

	return Decision{Allowed: true}
}

// ensureHydrated performs the at-most-once session hydration. Concurrent
// callers before completion share one flight; a completed attempt, successful
// or not, is never repeated for the lifetime of the process.
func (g *Guard) ensureHydrated(ctx context.Context) {
	g.mu.Lock()
	done := g.hydrated
	g.mu.Unlock()
	if done {
		return
	}

	g.group.Do("hydrate", func() (any, error) {
		g.mu.Lock()
		if g.hydrated {
			// A previous flight finished between our check and
			// joining the group.
			g.mu.Unlock()
			return nil, nil
		}
		g.mu.Unlock()

		defer func() {
			g.mu.Lock()
			g.hydrated = true
			g.mu.Unlock()
		}()

		if !g.session.IsAuthenticated() {
			return nil, nil
		}

		if err := g.session.Hydrate(ctx); err != nil {
			g.logger.Warn("session hydration failed", "error", err)
			g.session.Logout()
		}
		return nil, nil
	})
}
