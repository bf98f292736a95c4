package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, FormatJSON, c1.Format)
	assert.Equal(t, TopCustomersDefault, c1.TopCustomers)
	assert.Equal(t, 30, c1.PredictionWindowDays)

	c1.DB = "/tmp/sales.db"
	c1.Format = FormatYAML
	c1.TopCustomers = 10

	err = Save(dir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestReadOrCreate_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := ReadOrCreate(dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_DefaultsMissingValues(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte("db: mysql://u:p@h:3306/d\n"), fileMode)
	require.NoError(t, err)

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@h:3306/d", c.DB)
	assert.Equal(t, FormatJSON, c.Format)
	assert.Equal(t, TopCustomersDefault, c.TopCustomers)
}

func TestReadOrCreate_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte("format: xml\n"), fileMode)
	require.NoError(t, err)

	_, err = ReadOrCreate(dir)
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
	assert.Error(t, Save("", &Config{}))
	assert.Error(t, Save(t.TempDir(), nil))

	_, _, err = GetOrCreateHomeDir("")
	assert.Error(t, err)
}
