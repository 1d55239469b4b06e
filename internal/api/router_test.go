package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlearn/provisioning/internal/pkg/config"
)

// newTestRouter builds the router over lazily connecting clients; no server
// is contacted unless a handler touches a store.
func newTestRouter(t *testing.T, sources ...string) (http.Handler, error) {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	cfg.Tenancy.OriginSources = sources
	cfg.Batch.MaxSize = 10

	e, err := NewRouter(client.Database("provisioning_test"), rdb, cfg, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	return e, nil
}

func TestNewRouter_RejectsUnknownOriginSource(t *testing.T) {
	if _, err := newTestRouter(t, "fetch_from_nowhere"); err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestNewRouter_Routes(t *testing.T) {
	h, err := newTestRouter(t, "fetch_from_created_on_site_prop")
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/v1/accounts", http.StatusUnauthorized},
		{http.MethodGet, "/v1/accounts", http.StatusUnauthorized},
		{http.MethodPatch, "/v1/accounts/jane", http.StatusUnauthorized},
		{http.MethodDelete, "/v1/accounts/jane", http.StatusUnauthorized},
		{http.MethodPost, "/v1/enrollments", http.StatusUnauthorized},
		{http.MethodPost, "/v1/enrollments/validate", http.StatusUnauthorized},
		{http.MethodPost, "/v1/enrollments/batch", http.StatusUnauthorized},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}
