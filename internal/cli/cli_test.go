package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/berthplan/internal/services"
)

const bulletin = `入港予定
1 ◆ OCEAN PIONEER
LOA: 200m
ビット: 46-40
船尾: 40+05
代理店: 上組
03/01 08:00 ~ 03/02 17:00
2 ◆ HARBOR STAR
LOA: 120m
ビット: 30-28
船尾: 28+00
03/01 09:00 ~ 03/01 18:00
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QUAY_TIMEZONE", "UTC")
	t.Setenv("IMPORT_AGENT_CODES_FILE", "")

	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func writeBulletin(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bulletin.txt")
	require.NoError(t, os.WriteFile(path, []byte(bulletin), 0o644))
	return path
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"meters", []string{"convert", "100"}, []string{"meters:   100", "notation: 27+04", "position: 27.190"}},
		{"notation", []string{"convert", "36+04"}, []string{"meters:   320", "notation: 36+04", "berth:    6"}},
		{"negative offset", []string{"convert", "36-06"}, []string{"meters:   310", "notation: 36-06"}},
		{"bare bit", []string{"convert", "--bit", "40"}, []string{"meters:   436", "notation: 40+00"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, "", tc.args...)

			require.NoError(t, err)
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	_, err := execute(t, "", "convert", "abc")
	assert.ErrorContains(t, err, "not a meter value")

	_, err = execute(t, "", "convert", "99+00")
	assert.ErrorContains(t, err, "invalid bit notation")

	_, err = execute(t, "", "convert")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	file := writeBulletin(t)

	out, err := execute(t, "", "import", "-f", file, "--year", "2024", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocks: 3 total, 1 parsed, 2 skipped, 0 errored")
	assert.Contains(t, out, "Records: 2 created, 0 updated, 0 unchanged")
	assert.Contains(t, out, "Import ID: ")

	out, err = execute(t, "", "import", "-f", file, "--year", "2024", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 0 created, 0 updated, 2 unchanged")
}

func TestImportCommand_DryRunFromStdin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, bulletin, "import", "-f", "-", "--year", "2024", "--dry-run", "--verbose", "--db", dbPath)

	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.Contains(t, out, "parsed   OCEAN PIONEER (2 days)")
	assert.Contains(t, out, "skipped  HARBOR STAR")
	assert.Contains(t, out, "Records: 2 would be written")
	assert.NotContains(t, out, "Import ID")
}

func TestImportCommand_JSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "", "import", "-f", writeBulletin(t), "--year", "2024", "--import-id", "cli-1", "--json", "--db", dbPath)
	require.NoError(t, err)

	var report services.ImportReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "cli-1", report.ImportID)
	assert.Equal(t, 2, report.RecordsCreated)
}

func TestImportCommand_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	_, err := execute(t, "", "import", "--db", dbPath)
	assert.ErrorContains(t, err, "required flag")

	_, err = execute(t, "", "import", "-f", filepath.Join(t.TempDir(), "missing.txt"), "--db", dbPath)
	assert.ErrorContains(t, err, "bulletin file not found")

	_, err = execute(t, "", "import", "-f", "-", "--year", "2024", "--db", dbPath)
	assert.ErrorIs(t, err, services.ErrEmptyText)

	_, err = execute(t, bulletin, "import", "-f", "-", "--year", "1990", "--db", dbPath)
	assert.ErrorIs(t, err, services.ErrInvalidYear)
}

func TestParsePosition(t *testing.T) {
	m, err := parsePosition("-5", false)
	require.NoError(t, err)
	assert.Equal(t, -5.0, m)

	m, err = parsePosition("22", true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)
}
