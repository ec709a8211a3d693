package httphandler

import (
	_ "embed"
	"log/slog"
	"net/http"
)

//go:embed openapi.yaml
var openAPIDoc []byte

// RegisterDocs serves the OpenAPI description of the API.
func RegisterDocs(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/docs/openapi.yaml", getOpenAPIDoc)
}

func getOpenAPIDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(openAPIDoc); err != nil {
		slog.Error("failed to write openapi doc", "err", err)
	}
}
