package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdnscreen/internal/extract"
	"sdnscreen/internal/model"
)

func TestObserveExtract(t *testing.T) {
	m := New()
	m.ObserveExtract(&extract.Result{
		EntitiesEmitted:     3,
		PartiesSkipped:      2,
		AliasesDropped:      1,
		LocationsUnresolved: 4,
		ByType:              map[model.EntityType]int{model.TypeEntity: 2, model.TypeVessel: 1},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitiesExtracted.WithLabelValues("Entity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitiesExtracted.WithLabelValues("Vessel")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PartiesSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AliasesDropped))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.LocationsUnresolved))
}

func TestObserveSearch(t *testing.T) {
	m := New()
	m.ObserveSearch(5*time.Millisecond, 2)
	m.ObserveSearch(time.Millisecond, 0)
	m.ObserveSearch(time.Millisecond, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchOutcome.WithLabelValues("match")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchOutcome.WithLabelValues("no_match")))
}

func TestStageDone(t *testing.T) {
	m := New()
	m.StageDone("extract", time.Second, nil)
	m.StageDone("load", time.Second, errors.New("boom"))

	assert.Greater(t, testutil.ToFloat64(m.LastSuccess.WithLabelValues("extract")), 0.0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastSuccess.WithLabelValues("load")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveExtract(&extract.Result{PartiesSkipped: 1})
	m.ObserveLoad("sqlite", 10)
	m.ObserveSource(100)
	m.ObserveSearch(time.Millisecond, 1)
	m.StageDone("extract", time.Second, nil)
	require.NoError(t, m.WriteTextfile("ignored.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveLoad("sqlite", 42)

	path := filepath.Join(t.TempDir(), "sdnscreen.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sdnscreen_load_entities_total{driver="sqlite"} 42`)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSource(1024)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "sdnscreen_source_bytes 1024"))
}
