package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookRecorder struct {
	mutex    sync.Mutex
	payloads []map[string]any
}

func (r *webhookRecorder) handler(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	r.mutex.Lock()
	r.payloads = append(r.payloads, payload)
	r.mutex.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (r *webhookRecorder) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.payloads)
}

func setupAlertMiddleware(t *testing.T) (*ErrorAlertMiddleware, *webhookRecorder, clockwork.FakeClock) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(http.HandlerFunc(recorder.handler))
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClock()
	m := NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  server.URL,
		Environment: "dev",
		AppName:     "sorabackend",
		LogsURL:     "https://logs.example.com",
	}, clock)
	return m, recorder, clock
}

func TestErrorAlertMiddleware_Deduplicates(t *testing.T) {
	m, recorder, clock := setupAlertMiddleware(t)
	err := errors.New("database unavailable")

	m.AlertOnError(err, "reaction_added")
	m.AlertOnError(err, "reaction_added")
	m.Wait()
	assert.Equal(t, 1, recorder.count())

	m.AlertOnError(errors.New("different failure"), "reaction_added")
	m.Wait()
	assert.Equal(t, 2, recorder.count())

	clock.Advance(defaultAlertCooldown)
	m.AlertOnError(err, "reaction_added")
	m.Wait()
	assert.Equal(t, 3, recorder.count())
}

func TestErrorAlertMiddleware_Payload(t *testing.T) {
	m, recorder, _ := setupAlertMiddleware(t)

	m.AlertOnError(errors.New("boom"), "Background task: starboard")
	m.Wait()

	require.Equal(t, 1, recorder.count())
	payload := recorder.payloads[0]
	assert.Equal(t, "🚨 [dev] [sorabackend] Error Alert", payload["text"])
	blocks, ok := payload["blocks"].([]any)
	require.True(t, ok)
	assert.Len(t, blocks, 4)
}

func TestErrorAlertMiddleware_WrapBackgroundTask(t *testing.T) {
	m, recorder, _ := setupAlertMiddleware(t)

	err := m.WrapBackgroundTask("ok", func() error { return nil })()
	require.NoError(t, err)

	err = m.WrapBackgroundTask("fails", func() error { return errors.New("nope") })()
	require.Error(t, err)

	err = m.WrapBackgroundTask("panics", func() error { panic("bad state") })()
	require.Error(t, err)

	m.Wait()
	assert.Equal(t, 2, recorder.count())
}

func TestErrorAlertMiddleware_HTTPMiddleware(t *testing.T) {
	m, recorder, _ := setupAlertMiddleware(t)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	m.Wait()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, recorder.count())
}

func TestErrorAlertMiddleware_DisabledWithoutWebhook(t *testing.T) {
	m := NewErrorAlertMiddleware(SlackAlertConfig{}, clockwork.NewFakeClock())

	assert.NotPanics(t, func() {
		m.AlertOnError(errors.New("ignored"), "test")
		m.Wait()
	})
}
