// internal/testutil/mocks.go
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Nota: los fakes de ports están en sus respectivos paquetes de test.
// Este archivo contiene solo utilidades HTTP sin dependencias de domain.

// RecordedRequest guarda lo esencial de una petición recibida por TestServer.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// TestServer es un httptest.Server con rutas fijas que registra las
// peticiones recibidas.
type TestServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewTestServer arranca un servidor con las rutas dadas (path exacto).
// Las rutas desconocidas responden 404. Se cierra al terminar el test.
func NewTestServer(t *testing.T, routes map[string]http.HandlerFunc) *TestServer {
	t.Helper()

	ts := &TestServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := readAll(r)
		ts.mu.Lock()
		ts.requests = append(ts.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		ts.mu.Unlock()

		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Requests retorna una copia de las peticiones recibidas.
func (ts *TestServer) Requests() []RecordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]RecordedRequest, len(ts.requests))
	copy(out, ts.requests)
	return out
}

// RespondWith devuelve un handler con status, content type y body fijos.
func RespondWith(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// JSONResponse es RespondWith con application/json.
func JSONResponse(status int, body string) http.HandlerFunc {
	return RespondWith(status, "application/json", body)
}

// HTMLResponse es RespondWith con text/html.
func HTMLResponse(status int, body string) http.HandlerFunc {
	return RespondWith(status, "text/html; charset=utf-8", body)
}

func readAll(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	body, _ := io.ReadAll(r.Body)
	return body
}
