package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v = 1 + x + 2y on the unit square
const planar = "# x y dose\n0 0 1\n1 0 2\n0 1 3\n1 1 4\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParsePoint(t *testing.T) {
	x, y, err := parsePoint(" 1.5, -2")
	require.NoError(t, err)
	assert.Equal(t, 1.5, x)
	assert.Equal(t, -2.0, y)

	_, _, err = parsePoint("1;2")
	assert.Error(t, err)
	_, _, err = parsePoint("a,2")
	assert.Error(t, err)
}

func TestRun_Query(t *testing.T) {
	in := writeFile(t, "square.txt", planar)

	var out bytes.Buffer
	err := run([]string{"--no-color", "--check", "--at", "0.5,0.5", "--at", "5,5", in}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "nodes      4")
	assert.Contains(t, s, "triangles  2 (6 records)")
	assert.Contains(t, s, "check ok")
	assert.Contains(t, s, "at (0.5, 0.5)  mesh 2.5000  scans 2.5000")
	assert.Contains(t, s, "at (5, 5)  mesh outside  scans outside")
}

func TestRun_SnapshotRoundTrip(t *testing.T) {
	in := writeFile(t, "square.txt", planar)
	snap := filepath.Join(t.TempDir(), "square.dmsh")

	var out bytes.Buffer
	require.NoError(t, run([]string{"--no-color", "--snapshot", snap, "--codec", "lz4", in}, &out))
	assert.Contains(t, out.String(), "snapshot "+snap)

	out.Reset()
	require.NoError(t, run([]string{"--no-color", "--from-snapshot", "--check", "--at", "0.5,0.5", snap}, &out))
	assert.Contains(t, out.String(), "at (0.5, 0.5)  mesh 2.5000\n")
	assert.NotContains(t, out.String(), "scans")
}

func TestRun_PNG(t *testing.T) {
	in := writeFile(t, "square.txt", planar)
	png := filepath.Join(t.TempDir(), "map.png")

	var out bytes.Buffer
	require.NoError(t, run([]string{"--no-color", "--png", png, "--cols", "16", "--cell", "2", in}, &out))

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{filepath.Join(t.TempDir(), "missing.txt")}, &out))
	assert.Error(t, run([]string{"--codec", "gzip", "x"}, &out))

	dup := writeFile(t, "dup.txt", "0 0 1\n0 0 2\n1 1 3\n")
	assert.Error(t, run([]string{dup}, &out))
}
