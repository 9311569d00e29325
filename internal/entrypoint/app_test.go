package entrypoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/config"
	"github.com/mrlokans/berthplan/internal/metrics"
	"github.com/mrlokans/berthplan/internal/services"
)

const bulletin = `◆ OCEAN PIONEER
LOA: 200m
ビット: 46-40
船尾: 40+05
代理店: 上組
03/01 08:00 ~ 03/02 17:00
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "app.db")
	cfg.Quay.Timezone = "UTC"
	cfg.Import.AgentCodesFile = ""
	return cfg
}

func TestNewApp_ImportsAndArchives(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.ArchiveDir = filepath.Join(t.TempDir(), "archive")

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	report, err := app.Importer.Import(context.Background(), services.ImportRequest{Text: bulletin, Year: 2024, ImportID: "app-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.RecordsCreated)

	rows, err := app.Schedules.ListByDate("2024-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6, rows[0].BerthNumber)

	_, err = os.Stat(filepath.Join(cfg.Import.ArchiveDir, "app-1.json"))
	assert.NoError(t, err)

	require.NotNil(t, app.Registry)
	families, err := app.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewApp_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Registry)
	assert.IsType(t, metrics.NopRecorder{}, app.Metrics)
}

func TestNewApp_InvalidTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Quay.Timezone = "Mars/Olympus"

	_, err := NewApp(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestNewApp_MissingAgentCodesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.AgentCodesFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewApp(cfg, zap.NewNop())
	assert.Error(t, err)
}
