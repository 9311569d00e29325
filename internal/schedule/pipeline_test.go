package schedule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(newTestParser(), nil)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		result := newTestPipeline().Run(input, 2025, "batch-1")

		assert.Empty(t, result.Records)
		assert.Empty(t, result.Outcomes)
	}
}

func TestPipeline_Run_PreservesBlockOrder(t *testing.T) {
	input := "入港予定一覧\n" + sakuraMaru + oceanPioneer

	result := newTestPipeline().Run(input, 2024, "batch-1")

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, StatusSkipped, result.Outcomes[0].Status)
	assert.Equal(t, "SAKURA MARU", result.Outcomes[1].ShipName)
	assert.Equal(t, "OCEAN PIONEER", result.Outcomes[2].ShipName)

	require.Len(t, result.Records, 4)
	assert.Equal(t, "SAKURA MARU", result.Records[0].ShipName)
	assert.Equal(t, "SAKURA MARU", result.Records[1].ShipName)
	assert.Equal(t, "OCEAN PIONEER", result.Records[2].ShipName)
	assert.Equal(t, "OCEAN PIONEER", result.Records[3].ShipName)

	for i, o := range result.Outcomes {
		assert.Equal(t, i, o.Index)
	}
}

func TestPipeline_Run_PartialSuccess(t *testing.T) {
	missingPeriod := strings.Replace(oceanPioneer, "03/01 08:00 ~ 03/02 17:00", "", 1)
	badDate := strings.Replace(oceanPioneer, "03/02 17:00", "02/30 17:00", 1)
	input := missingPeriod + badDate + sakuraMaru

	result := newTestPipeline().Run(input, 2024, "batch-1")

	parsed, skipped, errored := result.Counts()
	assert.Equal(t, 1, parsed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, errored)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "SAKURA MARU", result.Records[0].ShipName)
}

func TestPipeline_Run_BelowMinimumExcluded(t *testing.T) {
	outside := strings.Replace(oceanPioneer, "船尾: 40+05", "船尾: 25+00", 1)

	result := newTestPipeline().Run(outside, 2025, "batch-1")

	assert.Empty(t, result.Records)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusSkipped, result.Outcomes[0].Status)
}

func TestPipeline_Run_HashStableAcrossRuns(t *testing.T) {
	first := newTestPipeline().Run(oceanPioneer, 2025, "batch-1")
	second := newTestPipeline().Run("0 ◆ OCEAN PIONEER\n"+strings.SplitN(oceanPioneer, "\n", 2)[1], 2025, "batch-2")

	require.NotEmpty(t, first.Records)
	require.NotEmpty(t, second.Records)
	assert.Equal(t, first.Records[0].DataHash, second.Records[0].DataHash)
	assert.Equal(t, "batch-1", first.Records[0].LastImportID)
	assert.Equal(t, "batch-2", second.Records[0].LastImportID)
}

func TestPipeline_Run_LogsRejectedBlocks(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pipeline := NewPipeline(newTestParser(), zap.New(core))

	badDate := strings.Replace(oceanPioneer, "03/02 17:00", "02/30 17:00", 1)
	pipeline.Run("header only\n"+badDate+sakuraMaru, 2024, "batch-1")

	assert.Equal(t, 1, logs.FilterMessage("Skipped schedule block").Len())
	errs := logs.FilterMessage("Failed to parse schedule block").All()
	require.Len(t, errs, 1)
	assert.Equal(t, "OCEAN PIONEER", errs[0].ContextMap()["ship_name"])
	assert.Equal(t, int64(1), errs[0].ContextMap()["block"])
}

func TestPipeline_Run_WarnsOnLongStay(t *testing.T) {
	tests := []struct {
		name   string
		period string
		days   int
		warned bool
	}{
		{"two days", "03/01 08:00 ~ 03/02 17:00", 2, false},
		{"at threshold", "03/01 08:00 ~ 05/01 17:00", LongStayDays, false},
		{"rollover to next year", "03/01 08:00 ~ 02/28 17:00", 365, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			pipeline := NewPipeline(newTestParser(), zap.New(core))
			block := strings.Replace(oceanPioneer, "03/01 08:00 ~ 03/02 17:00", tt.period, 1)

			result := pipeline.Run(block, 2025, "batch-1")

			assert.Len(t, result.Records, tt.days)
			warns := logs.FilterMessage("Long stay expanded").All()
			if !tt.warned {
				assert.Empty(t, warns)
				return
			}
			require.Len(t, warns, 1)
			assert.Equal(t, int64(tt.days), warns[0].ContextMap()["days"])
			assert.Equal(t, "OCEAN PIONEER", warns[0].ContextMap()["ship_name"])
		})
	}
}
