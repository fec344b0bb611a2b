package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beatgrid/internal/beatstore"
	"github.com/roach88/beatgrid/internal/journal"
)

type fixture struct {
	dir       string
	beatsPath string
	mediaDir  string
	handler   http.Handler
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		beatsPath: filepath.Join(dir, "beats.csv"),
		mediaDir:  filepath.Join(dir, "media"),
	}
	scenesPath := filepath.Join(dir, "scenes.txt")
	require.NoError(t, os.WriteFile(scenesPath, []byte("1-1\n1-2\n"), 0o644))
	require.NoError(t, os.WriteFile(f.beatsPath, []byte("1-1,1-2\r\n0.500,2.000\r\n1.000,\r\n"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(f.mediaDir, "nested.wav"), 0o755))
	for name, body := range map[string]string{
		"a.wav":  "RIFF-a-0123456789",
		"b.WAV":  "RIFF-b",
		"c.txt":  "not audio",
		"z.flac": "fLaC",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(f.mediaDir, name), []byte(body), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.wav"), []byte("outside"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := Options{
		Beats: beatstore.New(beatstore.Options{
			ScenesPath: scenesPath,
			BeatsPath:  f.beatsPath,
			Logger:     logger,
		}),
		MediaDir:        f.mediaDir,
		MediaExtensions: []string{".wav"},
		RequestIDs:      journal.NewFixedGenerator("req-1", "req-2", "req-3", "req-4", "req-5"),
		Logger:          logger,
	}
	if mutate != nil {
		mutate(&opts)
	}
	f.handler = New(opts).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestScenes(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/scenes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, []string{"1-1", "1-2"}, decode[[]string](t, w))
}

func TestScenes_MissingListIsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "scenes.txt")))

	w := f.do(t, http.MethodGet, "/api/scenes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = f.do(t, http.MethodGet, "/api/beats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"headers":[],"rows":[]}`, w.Body.String())
}

func TestGetBeats(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/beats", "")
	require.Equal(t, http.StatusOK, w.Code)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "beats_view", w.Body.Bytes())
}

func TestPostBeat(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodPost, "/api/beats", `{"scene":" 1-2 ","time":12.3456}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "append_ok", w.Body.Bytes())

	data, err := os.ReadFile(f.beatsPath)
	require.NoError(t, err)
	assert.Equal(t, "1-1,1-2\r\n0.500,2.000\r\n1.000,12.346\r\n", string(data))
}

func TestPostBeat_StringTime(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodPost, "/api/beats", `{"scene":"1-1","time":" 3.5 "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "3.500", resp["time"])
	assert.Equal(t, float64(2), resp["beat_row"])
	assert.Equal(t, float64(0), resp["scene_col"])
}

func TestPostBeat_Rejected(t *testing.T) {
	cases := []struct {
		name string
		body string
		code string
	}{
		{"not json", `scene=1-1`, ""},
		{"missing time", `{"scene":"1-1"}`, ""},
		{"missing scene", `{"time":1}`, ""},
		{"null time", `{"scene":"1-1","time":null}`, ""},
		{"non-numeric time", `{"scene":"1-1","time":"soon"}`, ""},
		{"bool time", `{"scene":"1-1","time":true}`, ""},
		{"blank scene", `{"scene":"   ","time":1}`, string(beatstore.ErrCodeInvalidInput)},
		{"non-finite time", `{"scene":"1-1","time":"NaN"}`, string(beatstore.ErrCodeInvalidInput)},
		{"unknown scene", `{"scene":"9-9","time":1}`, string(beatstore.ErrCodeInvalidScene)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			before, err := os.ReadFile(f.beatsPath)
			require.NoError(t, err)

			w := f.do(t, http.MethodPost, "/api/beats", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := decode[errorResponse](t, w)
			assert.False(t, resp.OK)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tc.code, resp.Code)

			after, err := os.ReadFile(f.beatsPath)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestPostBeat_MissingSceneList(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "scenes.txt")))

	w := f.do(t, http.MethodPost, "/api/beats", `{"scene":"1-1","time":1}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(beatstore.ErrCodeConfigMissing), decode[errorResponse](t, w).Code)
}

func TestPostBeat_RateLimited(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.RatePerSecond = 0.001
		o.RateBurst = 1
	})

	w := f.do(t, http.MethodPost, "/api/beats", `{"scene":"1-1","time":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/beats", `{"scene":"1-1","time":2}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, decode[errorResponse](t, w).OK)

	// Reads are not limited.
	w = f.do(t, http.MethodGet, "/api/beats", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostBeat_ZeroRateIsUnlimited(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.RatePerSecond = 0
		o.RateBurst = 1
	})

	for i := 1; i <= 5; i++ {
		w := f.do(t, http.MethodPost, "/api/beats", fmt.Sprintf(`{"scene":"1-2","time":%d}`, i))
		require.Equal(t, http.StatusOK, w.Code, "post %d", i)
	}
}

func TestMediaList(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/wav-files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a.wav", "b.WAV"}, decode[[]string](t, w))
}

func TestMediaList_ConfiguredExtensions(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MediaExtensions = []string{".FLAC", ".wav"} })
	w := f.do(t, http.MethodGet, "/api/wav-files", "")
	assert.Equal(t, []string{"a.wav", "b.WAV", "z.flac"}, decode[[]string](t, w))
}

func TestMediaList_MissingDirectory(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MediaDir = filepath.Join(t.TempDir(), "absent") })
	w := f.do(t, http.MethodGet, "/api/wav-files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestAudio(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/audio/a.wav", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RIFF-a-0123456789", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/api/audio/a.wav", nil)
	req.Header.Set("Range", "bytes=0-3")
	rw := httptest.NewRecorder()
	f.handler.ServeHTTP(rw, req)
	require.Equal(t, http.StatusPartialContent, rw.Code)
	assert.Equal(t, "RIFF", rw.Body.String())
}

func TestAudio_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{
		"/api/audio/missing.wav",
		"/api/audio/c.txt",
		"/api/audio/nested.wav",
		"/api/audio/",
	} {
		t.Run(target, func(t *testing.T) {
			w := f.do(t, http.MethodGet, target, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestMediaDir_ResolveRejectsEscapes(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.Symlink(filepath.Join(f.dir, "secret.wav"), filepath.Join(f.mediaDir, "link.wav")))
	m := newMediaDir(f.mediaDir, []string{".wav"})

	_, err := m.resolve("../secret.wav")
	assert.ErrorIs(t, err, errOutsideRoot)

	_, err = m.resolve("link.wav")
	assert.ErrorIs(t, err, errOutsideRoot)

	_, err = m.resolve(".")
	assert.ErrorIs(t, err, errOutsideRoot)

	path, err := m.resolve("a.wav")
	require.NoError(t, err)
	assert.Equal(t, "a.wav", filepath.Base(path))
}

func TestIndex(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>beatgrid</title>")

	w = f.do(t, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api")
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/scenes", "")
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/scenes", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rw := httptest.NewRecorder()
	f.handler.ServeHTTP(rw, req)
	assert.Equal(t, "caller-id", rw.Header().Get(RequestIDHeader))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodDelete, "/api/beats", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(Options{
		Beats:  beatstore.New(beatstore.Options{ScenesPath: filepath.Join(f.dir, "scenes.txt"), BeatsPath: f.beatsPath}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/scenes")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `["1-1","1-2"]`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
