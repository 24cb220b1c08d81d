package handler

import "net/http"

// Registrar mounts its routes on a mux below prefix
type Registrar interface {
	Register(mux *http.ServeMux, prefix string)
}

// NewRouter mounts every registrar under apiPrefix. Paths no route claims
// get the JSON 404 envelope.
func NewRouter(apiPrefix string, rs *Responder, registrars ...Registrar) *http.ServeMux {
	mux := http.NewServeMux()
	for _, reg := range registrars {
		reg.Register(mux, apiPrefix)
	}
	mux.HandleFunc("/", rs.NotFound)
	return mux
}
