package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evolveua/queuevault/internal/logging"
	"github.com/evolveua/queuevault/internal/relay/config"
	"github.com/evolveua/queuevault/internal/signing"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	err     error
	types   []string
	payload map[string]any
}

func (f *fakeDispatcher) Dispatch(_ context.Context, eventType string, clientPayload map[string]any) error {
	f.types = append(f.types, eventType)
	f.payload = clientPayload
	return f.err
}

func newTestServer(t *testing.T, d *fakeDispatcher) *Server {
	t.Helper()
	cfg := &config.Config{
		Addr:      ":0",
		Route:     "/api/github",
		AppSecret: "shh",
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s := New(cfg, d, logger)
	s.now = func() time.Time { return time.UnixMilli(1_000_000) }
	return s
}

func signedBody(t *testing.T, secret string, eventType string, data any, tsMillis int64) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	p := signing.Payload{Type: eventType, Data: raw, Timestamp: tsMillis}
	sig, err := signing.Sign(p, []byte(secret))
	require.NoError(t, err)
	body, err := json.Marshal(signing.SignedPayload{Payload: p, Signature: sig})
	require.NoError(t, err)
	return body
}

func post(t *testing.T, h http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/github", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestDispatch_ValidPayloadForwarded(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)
	h := s.Handler()

	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000)
	rec := post(t, h, body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	resp := decodeBody(t, rec)
	require.Equal(t, true, resp["success"])
	require.Equal(t, "Event sent to GitHub", resp["message"])

	require.Equal(t, []string{"register"}, d.types)
	require.Equal(t, "Alice", d.payload["name"])
	require.Equal(t, time.UnixMilli(1_000_000).UTC().Format(time.RFC3339), d.payload["submitted_at"])
}

func TestDispatch_WrongSecretRejected(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	body := signedBody(t, "wrong", "register", map[string]any{"name": "Alice"}, 1_000_000)
	rec := post(t, s.Handler(), body)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid signature", decodeBody(t, rec)["error"])
	require.Empty(t, d.types)
}

func TestDispatch_TamperedDataRejected(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000)
	tampered := bytes.Replace(body, []byte("Alice"), []byte("Mallory"), 1)
	rec := post(t, s.Handler(), tampered)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, d.types)
}

func TestDispatch_ExtraUnsignedFieldRejected(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	// A correctly signed payload with a field appended after signing. The
	// signature does not cover it, so the request must not verify.
	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	fields["extra"] = json.RawMessage(`"unsigned field"`)
	withExtra, err := json.Marshal(fields)
	require.NoError(t, err)

	rec := post(t, s.Handler(), withExtra)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid signature", decodeBody(t, rec)["error"])
	require.Empty(t, d.types)
}

func TestDispatch_StaleTimestampRejected(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	// 61 seconds behind the server clock.
	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000-61_000)
	rec := post(t, s.Handler(), body)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Timestamp expired", decodeBody(t, rec)["error"])
	require.Empty(t, d.types)
}

func TestDispatch_BoundaryTimestampAccepted(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	// Exactly 60 seconds old is still inside the window.
	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000-60_000)
	rec := post(t, s.Handler(), body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, d.types, 1)
}

func TestDispatch_MalformedBody(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	rec := post(t, s.Handler(), []byte(`{not json`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, d.types)
}

func TestDispatch_NonObjectDataStillForwarded(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestServer(t, d)

	body := signedBody(t, "shh", "register", []string{"not", "an", "object"}, 1_000_000)
	rec := post(t, s.Handler(), body)

	require.Equal(t, http.StatusOK, rec.Code)
	// Payload degrades to just the timestamp marker.
	require.Len(t, d.payload, 1)
	require.Contains(t, d.payload, "submitted_at")
}

func TestDispatch_DownstreamFailure(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("github said no")}
	s := newTestServer(t, d)

	body := signedBody(t, "shh", "register", map[string]any{"name": "Alice"}, 1_000_000)
	rec := post(t, s.Handler(), body)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "github said no")
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodOptions, "/api/github", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type, X-Signature, X-Timestamp", rec.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	require.Empty(t, rec.Body.Bytes())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Not found", decodeBody(t, rec)["error"])
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
