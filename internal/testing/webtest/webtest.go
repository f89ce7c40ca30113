// Package webtest wires handlers against a fake backend for package tests.
package webtest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ATELIER_TEST_MODE", "1")
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

// Call is one request received by the fake backend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// Backend records calls and answers them with the handler under test.
type Backend struct {
	Server *httptest.Server
	Client *api.Client

	mu    sync.Mutex
	calls []Call
}

// NewBackend starts a fake REST backend. Paths seen by handler are relative to
// the API root, e.g. "/categories".
func NewBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	b := &Backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
			Header: r.Header.Clone(),
		})
		b.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		handler(w, r)
	}))
	t.Cleanup(b.Server.Close)

	client, err := api.NewClient(api.Config{
		BaseURL: b.Server.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
		Logger:  Logger(),
	})
	require.NoError(t, err)
	b.Client = client
	return b
}

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Last returns the most recent call.
func (b *Backend) Last() Call {
	calls := b.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

// OK writes a success envelope around data.
func OK(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// Invalid writes a 422 validation response.
func Invalid(w http.ResponseWriter, message string, fields map[string][]string) {
	Write(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "message": message, "errors": fields})
}

// Fail writes an error envelope with status.
func Fail(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]any{"success": false, "message": message})
}

// Write encodes v as JSON with status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Paginated wraps items in the Laravel paginator shape.
func Paginated(items any, page, lastPage, perPage, total int) map[string]any {
	return map[string]any{
		"data":         items,
		"current_page": page,
		"last_page":    lastPage,
		"per_page":     perPage,
		"total":        total,
	}
}

// Logger discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Responder builds a responder over the embedded templates.
func Responder(t *testing.T) *view.Responder {
	t.Helper()
	engine, err := view.NewEngine("XOF")
	require.NoError(t, err)
	return view.NewResponder(Logger(), engine, shared.NewCSRFManager("test-csrf-secret"))
}

// Sessions returns a session manager backed by miniredis.
func Sessions(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "atelier_test", time.Hour, false)
}

// Browser replays requests against mounted routes, keeping one session across them.
type Browser struct {
	t        *testing.T
	router   chi.Router
	sessions *shared.SessionManager
	cookies  []*http.Cookie
	Session  *shared.Session
}

// NewBrowser mounts routes under prefix.
func NewBrowser(t *testing.T, prefix string, mount func(chi.Router)) *Browser {
	t.Helper()
	r := chi.NewRouter()
	r.Route(prefix, mount)
	return &Browser{t: t, router: r, sessions: Sessions(t)}
}

// Get issues a GET request.
func (b *Browser) Get(target string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, target, nil))
}

// PostForm issues an urlencoded POST request.
func (b *Browser) PostForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// Do runs req with the browser session loaded, then commits the session.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	ctx := context.Background()
	sess, err := b.sessions.Load(ctx, req)
	require.NoError(b.t, err)
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req.WithContext(shared.ContextWithSession(req.Context(), sess)))

	commit := httptest.NewRecorder()
	require.NoError(b.t, b.sessions.Commit(ctx, commit, sess))
	if cookies := commit.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	b.Session = sess
	return rec
}

// Flashes drains the toasts queued on the session by the last request.
func (b *Browser) Flashes() []shared.FlashMessage {
	if b.Session == nil {
		return nil
	}
	return b.Session.PopFlashes()
}
