package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadMasterData(t *testing.T) {
	path := writeTempFile(t, "master.csv", `Kode_DP,City,RK
DP-001,Jakarta,RK-A
DP-002,Bandung,RK-B
,,missing-code
DP-003,,RK-C
`)

	entries, err := LoadMasterData(path)
	require.NoError(t, err)

	assert.Len(t, entries, 2)
	assert.Equal(t, "Jakarta", entries["DP-001"].City)
	assert.Equal(t, "RK-A", entries["DP-001"].RK)
	assert.Equal(t, 2, entries["DP-001"].Row)
	assert.Equal(t, "Bandung", entries["DP-002"].City)
	_, ok := entries["DP-003"]
	assert.False(t, ok, "rows with blank fields must be skipped")
}

func TestLoadMasterData_SemicolonDelimiter(t *testing.T) {
	path := writeTempFile(t, "master.csv", "Kode_DP;City;RK\nDP-010;Surabaya;RK-X\n")

	entries, err := LoadMasterData(path)
	require.NoError(t, err)

	assert.Equal(t, "Surabaya", entries["DP-010"].City)
	assert.Equal(t, "RK-X", entries["DP-010"].RK)
}

func TestLoadMasterData_BOM(t *testing.T) {
	path := writeTempFile(t, "master.csv", "\xEF\xBB\xBFKode_DP,City,RK\nDP-020,Medan,RK-Y\n")

	entries, err := LoadMasterData(path)
	require.NoError(t, err)
	assert.Contains(t, entries, "DP-020")
}

func TestLoadMasterData_WhitespaceTrimmed(t *testing.T) {
	path := writeTempFile(t, "master.csv", "Kode_DP, City , RK\n DP-030 , Semarang , RK-Z \n")

	entries, err := LoadMasterData(path)
	require.NoError(t, err)
	assert.Equal(t, "Semarang", entries["DP-030"].City)
}

func TestLoadMasterData_MissingColumns(t *testing.T) {
	path := writeTempFile(t, "master.csv", "Kode_DP,City\nDP-001,Jakarta\n")

	_, err := LoadMasterData(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RK")
}

func TestLoadMasterData_NoValidRows(t *testing.T) {
	path := writeTempFile(t, "master.csv", "Kode_DP,City,RK\n,,\n")

	_, err := LoadMasterData(path)
	assert.Error(t, err)
}

func TestLoadMasterData_MissingFile(t *testing.T) {
	_, err := LoadMasterData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadDailyInput(t *testing.T) {
	path := writeTempFile(t, "input.txt", `DP-001
# a comment
DP-002

DP-001
DP-003
`)

	codes, err := ReadDailyInput(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"DP-001", "DP-002", "DP-003"}, codes)
}

func TestReadDailyInput_Empty(t *testing.T) {
	path := writeTempFile(t, "input.txt", "\n# only comments\n\n")

	codes, err := ReadDailyInput(path)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestReadDailyInput_MissingFile(t *testing.T) {
	_, err := ReadDailyInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
