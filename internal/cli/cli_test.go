package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/canon/internal/derive"
)

const userSource = `package users

//canon:derive
type User struct {
	First string ` + "`canon:\"intern\"`" + `
	Age   int
}
`

func writePackage(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.go"), []byte(src), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "canongen", cmd.Name())

	outputFlag := cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.Equal(t, derive.DefaultOutput, outputFlag.DefValue)

	configFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	verboseFlag := cmd.Flags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	assert.NotNil(t, cmd.Flags().Lookup("check"))
	assert.NotNil(t, cmd.Flags().Lookup("canon-import"))
}

func TestGenerate_WritesFile(t *testing.T) {
	dir := writePackage(t, userSource)

	logs, err := execute(t, dir)
	require.NoError(t, err)
	assert.Contains(t, logs, "generated")

	out, err := os.ReadFile(filepath.Join(dir, derive.DefaultOutput))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), derive.Header))
	assert.Contains(t, string(out), "type InternedUser struct")
	assert.Contains(t, string(out), "First: canon.String(v.First),")
}

func TestGenerate_Check(t *testing.T) {
	dir := writePackage(t, userSource)

	_, err := execute(t, "--check", dir)
	require.ErrorIs(t, err, ErrStale)

	_, err = execute(t, dir)
	require.NoError(t, err)

	_, err = execute(t, "--check", dir)
	require.NoError(t, err)

	// A source change makes the file stale again.
	changed := strings.Replace(userSource, "Age   int", "Age   int\n\tCity  string `canon:\"intern\"`", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.go"), []byte(changed), 0o600))
	_, err = execute(t, "--check", dir)
	assert.ErrorIs(t, err, ErrStale)
}

func TestGenerate_OutputFlag(t *testing.T) {
	dir := writePackage(t, userSource)

	_, err := execute(t, "-o", "zz_canon.go", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "zz_canon.go"))
	assert.NoFileExists(t, filepath.Join(dir, derive.DefaultOutput))
}

func TestGenerate_ConfigFile(t *testing.T) {
	src := `package places

import "example.com/geo"

//canon:derive
type Place struct {
	Name  string    ` + "`canon:\"intern\"`" + `
	Point geo.Point ` + "`canon:\"intern\"`" + `
}
`
	dir := writePackage(t, src)
	config := "output: places_canon.go\ncanon_import: example.com/canon\nexternals:\n  geo.Point: geo.InternedPoint\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(config), 0o600))

	_, err := execute(t, "-v", dir)
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "places_canon.go"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"example.com/canon"`)
	assert.Contains(t, string(out), "Point canon.Handle[geo.InternedPoint]")
	assert.Contains(t, string(out), "Point: c.Point.Value().Resolve(),")
}

func TestGenerate_FlagOverridesConfig(t *testing.T) {
	dir := writePackage(t, userSource)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("output: from_config.go\n"), 0o600))

	_, err := execute(t, "--output", "from_flag.go", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from_flag.go"))
	assert.NoFileExists(t, filepath.Join(dir, "from_config.go"))
}

func TestGenerate_UnsupportedShape(t *testing.T) {
	dir := writePackage(t, "package p\n\n//canon:derive\ntype T interface{}\n")

	_, err := execute(t, dir)
	require.ErrorIs(t, err, derive.ErrUnsupportedShape)
	assert.NoFileExists(t, filepath.Join(dir, derive.DefaultOutput))
}

func TestGenerate_MultipleDirs(t *testing.T) {
	a := writePackage(t, userSource)
	b := writePackage(t, userSource)
	empty := writePackage(t, "package p\n\ntype T struct{}\n")

	logs, err := execute(t, "-j", "2", a, b, empty)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(a, derive.DefaultOutput))
	assert.FileExists(t, filepath.Join(b, derive.DefaultOutput))
	assert.Contains(t, logs, "skipping")
}

func TestGenerate_ReportsEveryFailedDir(t *testing.T) {
	bad1 := writePackage(t, "package p\n\n//canon:derive\ntype T interface{}\n")
	good := writePackage(t, userSource)
	bad2 := writePackage(t, "package q\n\n//canon:derive\ntype U struct{}\n")

	_, err := execute(t, "-j", "1", bad1, good, bad2)
	require.ErrorIs(t, err, derive.ErrUnsupportedShape)
	assert.Contains(t, err.Error(), bad1)
	assert.Contains(t, err.Error(), bad2)
	assert.FileExists(t, filepath.Join(good, derive.DefaultOutput))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: x.go\nexternals:\n  a.B: a.C\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "x.go", cfg.Output)
	assert.Equal(t, map[string]string{"a.B": "a.C"}, cfg.Externals)

	require.NoError(t, os.WriteFile(path, []byte("ouput: typo.go\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Output)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
