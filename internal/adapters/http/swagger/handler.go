package swagger

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

// documentedBasePath is the fish path written in openapi.yaml.
const documentedBasePath = "/fish"

// Register attaches the API docs routes to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> Embedded OpenAPI spec, fish path set to basePath
func Register(_ context.Context, mux *http.ServeMux, basePath string) {
	if mux == nil {
		panic("mux is nil")
	}
	doc := Document(basePath)

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(doc)
	})
}

// Document returns the OpenAPI spec with the fish endpoint at basePath.
func Document(basePath string) []byte {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath == "" || basePath == documentedBasePath {
		return OpenAPI
	}
	return bytes.Replace(OpenAPI,
		[]byte("\n  "+documentedBasePath+":\n"),
		[]byte("\n  "+basePath+":\n"), 1)
}

// ReDoc page loading the published standalone bundle and /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Fishery API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
