package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shabbyrobe/subcrack"
)

func TestNewSearchMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewSearchMetrics(reg)
	require.NoError(t, err)

	_, err = NewSearchMetrics(reg)
	assert.Error(t, err, "second registration must collide")
}

func TestObserveChain(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSearchMetrics(reg)
	require.NoError(t, err)

	m.ObserveChain(subcrack.ChainStats{Chain: 0, Iterations: 5000, Accepted: 812, BestScore: -1234.5, Duration: 40 * time.Millisecond})
	m.ObserveChain(subcrack.ChainStats{Chain: 1, Iterations: 5000, Accepted: 790, BestScore: -1250.25, Duration: 45 * time.Millisecond})
	m.ObserveChain(subcrack.ChainStats{Chain: 0, Iterations: 100, Accepted: 8, BestScore: -99, Duration: time.Millisecond})

	assert.Equal(t, 5100.0, testutil.ToFloat64(m.iterations.WithLabelValues("0")))
	assert.Equal(t, 5000.0, testutil.ToFloat64(m.iterations.WithLabelValues("1")))
	assert.Equal(t, 820.0, testutil.ToFloat64(m.accepted.WithLabelValues("0")))
	assert.Equal(t, -99.0, testutil.ToFloat64(m.bestScore.WithLabelValues("0")))
	assert.Equal(t, -1250.25, testutil.ToFloat64(m.bestScore.WithLabelValues("1")))

	assert.Equal(t, 2, testutil.CollectAndCount(m.iterations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.chainDuration))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSearchMetrics(reg)
	require.NoError(t, err)
	m.ObserveChain(subcrack.ChainStats{Chain: 3, Iterations: 10, Accepted: 4, BestScore: -7})

	path := filepath.Join(t.TempDir(), "subcrack.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `subcrack_search_iterations_total{chain="3"} 10`), out)
	assert.True(t, strings.Contains(out, `subcrack_search_accepted_total{chain="3"} 4`), out)
	assert.True(t, strings.Contains(out, `subcrack_search_best_score{chain="3"} -7`), out)
	assert.True(t, strings.Contains(out, "subcrack_search_chain_duration_seconds_count 1"), out)
}
