package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/compression"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *services.SummaryService {
	t.Helper()

	years := []int{2000, 2001, 2002, 2003, 2004}
	cases := dataset.NewTable([]string{dataset.ColISO3, dataset.ColRegion}, years, []dataset.Row{
		{ISO3: "AAA", Region: "AFR", Values: []float64{1, 2, 3, 4, 5}},
		{ISO3: "BBB", Region: "AFR", Values: []float64{0, 0, 0, 0, 10}},
		{ISO3: "CCC", Region: "AMR", Values: []float64{5, 5, 5, 5, 5}},
	})
	pop := dataset.NewTable([]string{dataset.ColCountry, dataset.ColISO3}, years, []dataset.Row{
		{ISO3: "AAA", Country: "Alpha", Values: []float64{1e5, 1e5, 1e5, 1e5, 1e5}},
		{ISO3: "BBB", Country: "Beta", Values: []float64{1e5, 1e5, 0, 1e5, 1e5}},
		{ISO3: "CCC", Country: "Gamma", Values: []float64{1e5, 1e5, 1e5, 1e5, 1e5}},
	})
	data := &dataset.Data{Cases: cases, Population: pop, Lookup: dataset.Join(pop, cases)}

	opts := incidence.DefaultOptions()
	opts.Window = 3
	return services.NewSummaryService(logging.NewNop(), data, countrycode.StaticResolver{}, years, opts)
}

func TestPipeline_Run(t *testing.T) {
	store, err := storage.NewSnapshotStore(t.TempDir(), compression.Snappy, logging.NewNop())
	require.NoError(t, err)
	mem, err := queue.NewPublisher(queueMemory())
	require.NoError(t, err)
	publisher := queue.NewSummaryPublisher(mem, "")

	p := New(logging.NewNop(), newService(t), store, publisher)
	ctx := context.Background()

	result, err := p.Run(ctx, "AFR")
	require.NoError(t, err)

	assert.Equal(t, "AFR", result.Region)
	assert.Equal(t, 1, result.Countries)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Published)
	assert.True(t, result.Stored)

	run, err := store.Load(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Window)
	assert.Equal(t, []string{"BBB"}, run.Skipped)
	require.Len(t, run.Summaries, 1)
	assert.Equal(t, "AAA", run.Summaries[0].ISO3)

	msgs := mem.(*queue.MemoryPublisher).Drain("epistats.summary.AAA")
	require.Len(t, msgs, 1)
	var env queue.SummaryEnvelope
	require.NoError(t, json.Unmarshal(msgs[0], &env))
	assert.Equal(t, result.RunID, env.RunID)
}

func TestPipeline_Run_NoSinks(t *testing.T) {
	p := New(logging.NewNop(), newService(t), nil, nil)

	result, err := p.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Countries)
	assert.Zero(t, result.Published)
	assert.False(t, result.Stored)
	assert.NotEmpty(t, result.RunID)
}

func TestPipeline_Run_PublishFailure(t *testing.T) {
	mem, err := queue.NewPublisher(queueMemory())
	require.NoError(t, err)
	require.NoError(t, mem.Close())

	p := New(logging.NewNop(), newService(t), nil, queue.NewSummaryPublisher(mem, ""))

	result, err := p.Run(context.Background(), "AMR")
	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Zero(t, result.Published)
}

func TestPipeline_Run_LogsRunID(t *testing.T) {
	var buf bytes.Buffer
	mem, err := queue.NewPublisher(queueMemory())
	require.NoError(t, err)
	require.NoError(t, mem.Close())

	logger := logging.NewWithWriter(&buf, zerolog.InfoLevel)
	p := New(logger, newService(t), nil, queue.NewSummaryPublisher(mem, ""))

	result, err := p.Run(context.Background(), "AMR")
	require.Error(t, err)
	require.NotNil(t, result)

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NotEmpty(t, entries)

	var failed map[string]interface{}
	for _, entry := range entries {
		assert.Equal(t, result.RunID, entry["run_id"])
		if entry["message"] == "Failed to publish summary run" {
			failed = entry
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "error", failed["level"])
	assert.Equal(t, false, failed["stored"])
}

func queueMemory() config.QueueConfig {
	return config.QueueConfig{Type: "memory"}
}
