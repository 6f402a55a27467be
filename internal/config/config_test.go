package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultReportSuffix, cfg.ReportSuffix)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.True(t, cfg.WriteReport())
	assert.Empty(t, cfg.Path)
	assert.Equal(t, "Main.unity.mergereport", cfg.ReportPath("Main.unity"))
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	src := "reportSuffix: .review\nalwaysWriteReport: false\ncolor: off\nlog:\n  level: debug\n  file: merge.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.yml"), []byte(src), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ".review", cfg.ReportSuffix)
	assert.False(t, cfg.WriteReport())
	assert.Equal(t, ColorOff, cfg.Color)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "merge.log", cfg.Log.File)
	assert.Equal(t, filepath.Join(dir, ".unitymerge.yml"), cfg.Path)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	src := "reportSuffix = \".rep\"\ncolor = \"on\"\n\n[log]\nlevel = \"info\"\nmaxSizeMB = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.toml"), []byte(src), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ".rep", cfg.ReportSuffix)
	assert.Equal(t, ColorOn, cfg.Color)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.WriteReport())
}

func TestLoad_YAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.yaml"), []byte("reportSuffix: .a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.toml"), []byte("reportSuffix = \".b\"\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ".a", cfg.ReportSuffix)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.yml"), []byte("color: purple\n"), 0o644))
	_, err := Load(dir)
	require.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".unitymerge.yml"), []byte("reportSuffix: [\n"), 0o644))
	_, err = Load(dir)
	require.Error(t, err)
}
