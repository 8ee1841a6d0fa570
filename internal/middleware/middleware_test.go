package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/posts-api/internal/auth"
	"github.com/BorisDmv/posts-api/internal/middleware"
)

func actorEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, int64(5), actor.ID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokens([]byte("secret"))
	token, err := tokens.Issue(5, true)
	require.NoError(t, err)

	handler := middleware.Authenticate(tokens)(actorEcho(t))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + token, want: http.StatusNoContent},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				require.JSONEq(t, `{"message":"Unauthenticated."}`, rec.Body.String())
			}
		})
	}
}

func TestRequireVerified(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.RequireVerified(ok)

	serve := func(r *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	require.Equal(t, http.StatusUnauthorized, serve(req).Code)

	unverified := req.WithContext(auth.WithActor(req.Context(), auth.Actor{ID: 1}))
	rec := serve(unverified)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"message":"Your email address is not verified."}`, rec.Body.String())

	verified := req.WithContext(auth.WithActor(req.Context(), auth.Actor{ID: 1, Verified: true}))
	require.Equal(t, http.StatusNoContent, serve(verified).Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/posts/1", "/posts/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
