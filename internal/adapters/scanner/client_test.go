package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrentry/internal/infrastructure/i18n"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"defaultEvent":"Gala","defaultVenue":"Main Gate"}`))
	})
	mux.HandleFunc("/api/qr/scan", func(w http.ResponseWriter, r *http.Request) {
		var body scanBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Main Gate", body.Venue)
		switch body.UID {
		case "fresh":
			_, _ = w.Write([]byte(`{"success":true,"message":"✅ Entry successful","attendeeName":"Alice","status":"ENTERED"}`))
		case "used":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"message":"❌ QR code already used","attendeeName":"Bob","status":"ENTERED"}`))
		case "boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"❌ Invalid QR"}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Config(t *testing.T) {
	srv := newFakeServer(t)

	cfg, err := NewClient(srv.URL+"/", nil).Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Config{DefaultEvent: "Gala", DefaultVenue: "Main Gate"}, cfg)
}

func TestClient_Validate(t *testing.T) {
	c := NewClient(newFakeServer(t).URL, nil)
	ctx := context.Background()

	tests := []struct {
		uid  string
		want Result
	}{
		{"fresh", Result{OK: true, Status: 200, Message: "✅ Entry successful", AttendeeName: "Alice"}},
		{"used", Result{OK: false, Status: 409, Message: "❌ QR code already used", AttendeeName: "Bob"}},
		{"ghost", Result{OK: false, Status: 404, Message: "❌ Invalid QR"}},
		{"boom", Result{OK: false, Status: 502}},
	}
	for _, tt := range tests {
		t.Run(tt.uid, func(t *testing.T) {
			got, err := c.Validate(ctx, tt.uid, "Main Gate")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Validate(context.Background(), "x", "Gate")
	assert.Error(t, err)
}

func TestResult_Line(t *testing.T) {
	tr := i18n.NewTranslator("en")

	tests := []struct {
		name   string
		res    Result
		locale string
		want   string
	}{
		{"admitted", Result{OK: true, Status: 200, Message: "✅ Entry successful", AttendeeName: "Alice"}, "en", "✅ Welcome, Alice"},
		{"admitted fr", Result{OK: true, Status: 200, AttendeeName: "Chloé"}, "fr", "✅ Bienvenue, Chloé"},
		{"already used", Result{Status: 409, Message: "❌ QR code already used", AttendeeName: "Bob"}, "en", "Bob: ❌ QR code already used"},
		{"unknown", Result{Status: 404, Message: "❌ Invalid QR"}, "en", "❌ Invalid QR"},
		{"bare error", Result{Status: 502}, "en", "Error (502)"},
		{"bare error fr", Result{Status: 502}, "fr", "Erreur (502)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Line(tr, tt.locale))
		})
	}
}
