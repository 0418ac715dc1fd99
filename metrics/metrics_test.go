package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersWithoutConflicts(t *testing.T) {
	reg := NewRegistry()
	require.NotPanics(t, func() { New(reg) })
}

func TestMetrics_Counters(t *testing.T) {
	m := New(NewRegistry())

	m.StarboardEvent("reaction_added", "posted")
	m.StarboardEvent("reaction_added", "posted")
	m.StarboardPost(PostActionRemoved)
	m.CacheRequest("msg", true)
	m.CacheRequest("msg", false)
	m.CacheRequest("msg", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StarboardEvents.WithLabelValues("reaction_added", "posted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StarboardPosts.WithLabelValues(PostActionRemoved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("msg", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("msg", "miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StarboardEvent("reaction_added", "ignored")
		m.StarboardPost(PostActionPosted)
		m.CacheRequest("msg", true)
	})
}

func TestHandler_ServesNamespacedMetrics(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.StarboardPost(PostActionPosted)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `sorabot_starboard_posts_total{action="posted"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
