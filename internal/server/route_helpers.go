package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/analyst/internal/handlers"
)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]http.HandlerFunc

// RouteByMethod dispatches on method before any per-route middleware runs,
// so requests with the wrong method never spend rate limit budget.
func RouteByMethod(routes MethodRouter) http.HandlerFunc {
	methods := make([]string, 0, len(routes))
	for method := range routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	allow := strings.Join(methods, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		handler(w, r)
	}
}
