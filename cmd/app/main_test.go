package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestGenerateFixStations(t *testing.T) {
	stations := generateFixStations(10, 1000, 1000)
	require.Len(t, stations, 10)
	for _, s := range stations {
		assert.True(t, s.X > 0 && s.X < 1000)
		assert.True(t, s.Y > 0 && s.Y < 1000)
	}
}

func TestApplyBeam(t *testing.T) {
	stations := []Station{{X: 500, Y: 500}, {X: 0, Y: 0}}
	applyBeam(stations, 1000, 1000, 0.25)
	assert.InDelta(t, 100, stations[0].Dose, 1e-12)
	assert.Less(t, stations[1].Dose, stations[0].Dose)
}

func TestDedupStations(t *testing.T) {
	in := []Station{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}}
	assert.Equal(t, []Station{{X: 1, Y: 1}, {X: 2, Y: 2}}, dedupStations(in))
}

func TestDiagramHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	diagramHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Карта дозы")
	assert.Contains(t, rec.Body.String(), "[dt]")
}

const triples = "0 0 1\n10 0 2\n0 10 3\n10 10 4\n"

func TestOpenMeasurement(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.txt"), []byte(triples), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Symlink("/etc/passwd", filepath.Join(dir, "link")))

	m, err := openMeasurement(dir, "scan.txt")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())

	// имена за пределами каталога неотличимы от отсутствующих файлов
	for _, name := range []string{"../../etc/passwd", "/etc/passwd", "link", "sub", "missing.txt", "sub/../../scan.txt"} {
		_, err := openMeasurement(dir, name)
		assert.Equal(t, errDataPath, err, name)
	}

	_, err = openMeasurement("", "scan.txt")
	assert.Equal(t, errDataDisabled, err)
}

func TestDiagramHandler_DataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.txt"), []byte(triples), 0o644))

	old := *dataDir
	*dataDir = dir
	defer func() { *dataDir = old }()

	post := func(file string) string {
		form := url.Values{"file": {file}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		diagramHandler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	body := post("../../etc/passwd")
	assert.Contains(t, body, "Файл измерения отклонен")
	assert.NotContains(t, body, "root:")
	assert.NotContains(t, body, "Измерение загружено")

	body = post("scan.txt")
	assert.Contains(t, body, "Измерение загружено")
	assert.NotContains(t, body, "Файл измерения отклонен")
}

func TestLimit(t *testing.T) {
	h := limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), rate.NewLimiter(0, 1))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
