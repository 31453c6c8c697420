package navigator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubase/edubase-client/internal/application/session"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
	"github.com/edubase/edubase-client/internal/infrastructure/credentials"
	"github.com/edubase/edubase-client/pkg/retry"
)

type fakeSession struct {
	mu           sync.Mutex
	authed       bool
	hydrateErr   error
	hydrateDelay time.Duration
	hydrateCalls int32
}

func (s *fakeSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *fakeSession) Hydrate(ctx context.Context) error {
	atomic.AddInt32(&s.hydrateCalls, 1)
	time.Sleep(s.hydrateDelay)
	if s.hydrateErr != nil {
		s.Logout()
		return s.hydrateErr
	}
	return nil
}

func (s *fakeSession) Logout() {
	s.mu.Lock()
	s.authed = false
	s.mu.Unlock()
}

func newGuard(s Session) *Guard {
	return NewGuard(s, DefaultRoutes(), nil)
}

// Every redirect the guard issues targets the login or dashboard route, so a
// table missing either must be rejected at construction rather than surface
// later as a redirect to an empty path.
func TestNewGuard_RejectsIncompleteRouteTable(t *testing.T) {
	var withoutLogin, withoutLanding []Route
	for _, rt := range DefaultRoutes() {
		if rt.Name != RouteLogin {
			withoutLogin = append(withoutLogin, rt)
		}
		if rt.Name != RouteDashboard {
			withoutLanding = append(withoutLanding, rt)
		}
	}

	assert.Panics(t, func() { NewGuard(&fakeSession{}, withoutLogin, nil) })
	assert.Panics(t, func() { NewGuard(&fakeSession{}, withoutLanding, nil) })
	assert.NotPanics(t, func() { NewGuard(&fakeSession{}, DefaultRoutes(), nil) })
}

func TestGuard_ProtectedRouteWhileAnonymous(t *testing.T) {
	guard := newGuard(&fakeSession{})

	target := match(DefaultRoutes(), "/subjects/42")
	decision := guard.Check(context.Background(), target)

	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.Redirect)
	assert.Equal(t, RouteLogin, decision.Redirect.Route.Name)
	assert.Equal(t, "/subjects/42", decision.Redirect.Query.Get("redirect"))
}

func TestGuard_LoginWhileAuthenticatedRedirectsToLanding(t *testing.T) {
	guard := newGuard(&fakeSession{authed: true})

	for _, path := range []string{"/login", "/register"} {
		decision := guard.Check(context.Background(), match(DefaultRoutes(), path))
		assert.False(t, decision.Allowed, path)
		require.NotNil(t, decision.Redirect, path)
		assert.Equal(t, RouteDashboard, decision.Redirect.Route.Name, path)
	}
}

func TestGuard_AllowsPublicAndAuthenticatedRoutes(t *testing.T) {
	anon := newGuard(&fakeSession{})
	assert.True(t, anon.Check(context.Background(), match(DefaultRoutes(), "/login")).Allowed)
	assert.True(t, anon.Check(context.Background(), match(DefaultRoutes(), "/register")).Allowed)

	authed := newGuard(&fakeSession{authed: true})
	assert.True(t, authed.Check(context.Background(), match(DefaultRoutes(), "/subjects")).Allowed)
	assert.True(t, authed.Check(context.Background(), match(DefaultRoutes(), "/")).Allowed)
}

// The one-shot hydration fires exactly once no matter how many navigations
// race before it resolves.
func TestGuard_HydrationIsSingleFlight(t *testing.T) {
	sess := &fakeSession{authed: true, hydrateDelay: 30 * time.Millisecond}
	guard := newGuard(sess)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard.Check(context.Background(), match(DefaultRoutes(), "/subjects"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&sess.hydrateCalls))

	// Later navigations never re-trigger hydration.
	guard.Check(context.Background(), match(DefaultRoutes(), "/questions"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&sess.hydrateCalls))
}

func TestGuard_HydrationFailureResolvesToAnonymous(t *testing.T) {
	sess := &fakeSession{authed: true, hydrateErr: errors.New("token expired")}
	guard := newGuard(sess)

	decision := guard.Check(context.Background(), match(DefaultRoutes(), "/profile"))

	// Navigation is not blocked: it resolves to the unauthenticated rules.
	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.Redirect)
	assert.Equal(t, RouteLogin, decision.Redirect.Route.Name)
	assert.Equal(t, "/profile", decision.Redirect.Query.Get("redirect"))

	// The failed attempt is not repeated.
	guard.Check(context.Background(), match(DefaultRoutes(), "/profile"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&sess.hydrateCalls))
}

func TestGuard_NoCredentialSkipsHydration(t *testing.T) {
	sess := &fakeSession{}
	guard := newGuard(sess)

	guard.Check(context.Background(), match(DefaultRoutes(), "/login"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&sess.hydrateCalls))
}

func TestRouter_NavigateFollowsRedirect(t *testing.T) {
	guard := newGuard(&fakeSession{})
	router := NewRouter(DefaultRoutes(), guard, nil)

	arrived := router.Navigate(context.Background(), "/subjects")
	assert.Equal(t, RouteLogin, arrived.Route.Name)
	assert.Equal(t, "/subjects", arrived.Query.Get("redirect"))
	assert.Equal(t, RouteLogin, router.Current().Route.Name)
}

// A request already in flight when the user logs out comes back 401: the
// session ends Anonymous (double-clear is idempotent) and navigation lands on
// login exactly once, with the originating path preserved.
func TestRouter_UnauthorizedMidFlightForcesLoginOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "username": "alice", "email": "a@example.com", "role": "student",
		})
	})
	mux.HandleFunc("/api/v1/subjects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set("persisted-token"))

	cfg := api.DefaultConfig(srv.URL)
	cfg.Retry = retry.Config{MaxAttempts: 1}
	client := api.NewClient(cfg, store, nil)

	sess := session.NewManager(client, store, nil)
	guard := NewGuard(sess, DefaultRoutes(), nil)
	router := NewRouter(DefaultRoutes(), guard, nil)
	client.OnUnauthorized(func() {
		sess.Logout()
		router.ForceLogin()
	})

	// First navigation hydrates the persisted session and is allowed.
	arrived := router.Navigate(context.Background(), "/subjects")
	assert.Equal(t, RouteSubjects, arrived.Route.Name)
	assert.True(t, sess.IsAuthenticated())

	// The user logs out while a request is in flight; its 401 then lands.
	sess.Logout()
	err := client.Get(context.Background(), "/api/v1/subjects", nil)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	assert.False(t, sess.IsAuthenticated(), "double clear is idempotent")
	current := router.Current()
	assert.Equal(t, RouteLogin, current.Route.Name)
	assert.Equal(t, "/subjects", current.Query.Get("redirect"))

	// A second 401 while already on login does not move the location again.
	client.Get(context.Background(), "/api/v1/subjects", nil)
	assert.Equal(t, current, router.Current())
}
