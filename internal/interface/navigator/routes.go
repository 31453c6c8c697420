// Package navigator implements the client's route table and the navigation
// guard that gates every transition on authentication state.
package navigator

import (
	"net/url"
	"strings"
)

// Route names, used when targeting routes directly.
const (
	RouteLogin        = "login"
	RouteRegister     = "register"
	RouteDashboard    = "dashboard"
	RouteSubjects     = "subjects"
	RouteSubjectInfo  = "subject-detail"
	RouteKnowledgeMap = "knowledge-map"
	RouteQuestions    = "questions"
	RouteMistakeBook  = "mistake-book"
	RouteProfile      = "profile"
	RouteNotFound     = "not-found"
)

// Route is one entry of the route table. Path segments starting with ':' are
// parameters.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// DefaultRoutes is the client's route table. The dashboard is the default
// landing route; everything under it requires an authenticated session.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteLogin, Path: "/login"},
		{Name: RouteRegister, Path: "/register"},
		{Name: RouteDashboard, Path: "/", RequiresAuth: true},
		{Name: RouteSubjects, Path: "/subjects", RequiresAuth: true},
		{Name: RouteSubjectInfo, Path: "/subjects/:id", RequiresAuth: true},
		{Name: RouteKnowledgeMap, Path: "/subjects/:id/knowledge-map", RequiresAuth: true},
		{Name: RouteQuestions, Path: "/questions", RequiresAuth: true},
		{Name: RouteMistakeBook, Path: "/mistake-book", RequiresAuth: true},
		{Name: RouteProfile, Path: "/profile", RequiresAuth: true},
	}
}

// Target is a concrete navigation destination: a matched route plus the
// extracted parameters and query.
type Target struct {
	Route  Route
	Path   string
	Params map[string]string
	Query  url.Values
}

// FullPath returns the concrete path including the query string, suitable for
// use as a post-login redirect target.
func (t Target) FullPath() string {
	if len(t.Query) == 0 {
		return t.Path
	}
	return t.Path + "?" + t.Query.Encode()
}

// match resolves a raw path against the table. Unknown paths resolve to the
// not-found route, which is public.
func match(routes []Route, rawPath string) Target {
	parsed, err := url.Parse(rawPath)
	if err != nil {
		parsed = &url.URL{Path: rawPath}
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	for _, rt := range routes {
		if params, ok := matchPattern(rt.Path, path); ok {
			return Target{Route: rt, Path: path, Params: params, Query: parsed.Query()}
		}
	}

	return Target{
		Route: Route{Name: RouteNotFound, Path: path},
		Path:  path,
		Query: parsed.Query(),
	}
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	if pattern == path {
		return nil, true
	}

	patternSegs := splitPath(pattern)
	pathSegs := splitPath(path)
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = map[string]string{}
			}
			params[seg[1:]] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
