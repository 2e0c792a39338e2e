// Package module wires the query server's HTTP surface onto a mux so
// the binary and embedding hosts register the same route set.
package module

import (
	"net/http"

	"github.com/tablefs/tablefs-querier/querier"
)

// Route is one registered endpoint.
type Route struct {
	Path    string
	Handler http.HandlerFunc
}

// Routes returns the full endpoint set for a server. The root route
// doubles as the connectivity check.
func Routes(server *querier.Server) []Route {
	return []Route{
		{Path: "/", Handler: server.HandleTest},
		{Path: "/health", Handler: server.HandleHealth},
		{Path: "/query", Handler: server.HandleQuery},
		{Path: "/search", Handler: server.HandleSearch},
		{Path: "/tag-keys", Handler: server.HandleTagKeys},
		{Path: "/tag-values", Handler: server.HandleTagValues},
	}
}

// Init registers all server routes on mux and returns it. A nil mux
// gets a fresh one.
func Init(mux *http.ServeMux, server *querier.Server) *http.ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}
	for _, route := range Routes(server) {
		mux.HandleFunc(route.Path, route.Handler)
	}
	return mux
}
