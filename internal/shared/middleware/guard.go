package middleware

import (
	"net/http"
	"strings"
)

// AuthCookie marks a browser session as signed in
const AuthCookie = "auth"

// RouteKind classifies a request path for the route guard
type RouteKind int

const (
	RouteOpen RouteKind = iota
	RouteAuth
	RouteProtected
)

var (
	authRoutes      = []string{"/login", "/register"}
	protectedRoutes = []string{"/dashboard", "/transactions", "/budget"}
)

// Classify reports whether path is a sign-in page, a protected page or neither.
// A route matches itself and its sub-paths.
func Classify(path string) RouteKind {
	if matchesAny(path, authRoutes) {
		return RouteAuth
	}
	if matchesAny(path, protectedRoutes) {
		return RouteProtected
	}
	return RouteOpen
}

func matchesAny(path string, routes []string) bool {
	for _, route := range routes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// RouteGuard redirects page requests based on the presence of the auth cookie.
// Signed-in users are sent from sign-in pages to /dashboard and anonymous users
// are sent from protected pages to /login.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(AuthCookie)
		signedIn := err == nil

		switch Classify(r.URL.Path) {
		case RouteAuth:
			if signedIn {
				http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
				return
			}
		case RouteProtected:
			if !signedIn {
				http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
