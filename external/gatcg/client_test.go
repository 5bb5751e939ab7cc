package gatcg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		Requester: fetch.NewRequester(fetch.Config{
			HTTPClient: srv.Client(),
			Logger:     logging.NewNop(),
			Sleep:      func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
		}),
		BaseURL: srv.URL,
		Logger:  logging.NewNop(),
	})
}

func TestClient_FetchCardMapsCatalogEntry(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/lorraine-crux-knight" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"slug":"lorraine-crux-knight","name":"Lorraine, Crux Knight","type":"CHAMPION","element":"NORM",
			"classes":["WARRIOR"," "],"life_modifier":22,"effect_text":"On Enter: draw a card.","set":"DOA","rarity":"CSR"}}`))
	})

	out := client.FetchCard(context.Background(), "Lorraine, Crux Knight")
	if !out.IsFound() {
		t.Fatalf("expected found, got=%s", out)
	}

	got := out.Value
	if got.Slug != "lorraine-crux-knight" || got.Name != "Lorraine, Crux Knight" || got.SetName != "DOA" {
		t.Fatalf("unexpected card: %+v", got)
	}
	if len(got.Classes) != 1 || got.PrimaryClass() != "WARRIOR" {
		t.Fatalf("expected blank classes trimmed, got=%v", got.Classes)
	}
	if got.LifeModifier == nil || *got.LifeModifier != 22 || got.Cost != nil {
		t.Fatalf("unexpected numeric fields: %+v", got)
	}
}

func TestClient_FetchCardServerErrorIsRetryable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	out := client.FetchCard(context.Background(), "firebolt")
	if !out.Retryable() {
		t.Fatalf("expected retryable error, got=%s", out)
	}
}

func TestClient_FetchCardRejectsEmptySlug(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("expected no upstream call")
	})

	if out := client.FetchCard(context.Background(), "  "); out.Status != fetch.StatusError {
		t.Fatalf("expected error outcome, got=%s", out)
	}
}
