package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/api"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/sink"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

const validPayload = `{
	"sent_timestamp": "2024-03-01T12:00:00.000Z",
	"platform": "ROKU",
	"device_id": "dev-1",
	"personalization_id": "p-1",
	"containers": [{"id": "featured", "contents": [{"series_id": 7, "row": 0, "col": 0, "duration": 1200}]}],
	"series_page": {"series_id": 7}
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func testStore() *state.Store {
	return state.NewStore(state.State{Auth: state.Auth{DeviceID: "device-1", User: &state.User{UserID: 9}}})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func requireCLIError(t *testing.T, err error, want clierrors.ErrorType) {
	t.Helper()
	require.Error(t, err)
	var cliErr *clierrors.CLIError
	require.True(t, stderrors.As(err, &cliErr), "expected a CLIError, got %T: %v", err, err)
	assert.Equal(t, want, cliErr.Type)
}

// Test service initialization
func TestServiceInitialization(t *testing.T) {
	tests := []struct {
		name     string
		initFunc func() interface{}
	}{
		{"SimulateService", func() interface{} { return NewSimulateService() }},
		{"SignalService", func() interface{} { return NewSignalService(nil) }},
		{"SinkService", func() interface{} { return NewSinkService() }},
		{"TailService", func() interface{} { return NewTailService(&bytes.Buffer{}) }},
		{"PagesService", func() interface{} { return NewPagesService() }},
	}

	for _, tt := range tests {
		svc := tt.initFunc()
		if svc == nil {
			t.Errorf("%s: returned nil", tt.name)
		}
	}
}

func TestPluralizeFunctions(t *testing.T) {
	tests := []struct {
		count    int
		expected string
	}{
		{0, "s"},
		{1, ""},
		{2, "s"},
	}

	for _, tt := range tests {
		if got := pluralize(tt.count); got != tt.expected {
			t.Errorf("pluralize(%d): got %q, want %q", tt.count, got, tt.expected)
		}
	}
}

func TestPageRows(t *testing.T) {
	rows := PageRows([]string{"/", "/movies/42", "/nowhere"})

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"/", "home_page", "yes"}, rows[0])
	assert.Equal(t, []string{"/movies/42", "video_page{video_id=42}", "yes"}, rows[1])
	assert.Equal(t, []string{"/nowhere", "-", "no"}, rows[2])
}

func TestResolveEndpoint(t *testing.T) {
	got, err := ResolveEndpoint("staging", "")
	require.NoError(t, err)
	assert.Equal(t, api.StagingHost+api.SingleEventPath, got)

	got, err = ResolveEndpoint("staging", "http://localhost:8787/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8787"+api.SingleEventPath, got)

	_, err = ResolveEndpoint("moon", "")
	requireCLIError(t, err, clierrors.ErrorTypeConfig)
}

func TestManagerOptions(t *testing.T) {
	config.Set("impressions.valid_duration_ms", 500)
	config.Set("impressions.max_concluded", 3)
	config.Set("impressions.timeout_ms", 4000)
	config.Set("analytics.platform", "roku")
	t.Cleanup(func() {
		config.Set("impressions.valid_duration_ms", 1000)
		config.Set("impressions.max_concluded", 10)
		config.Set("impressions.timeout_ms", 20000)
		config.Set("analytics.platform", "web")
	})

	opts := ManagerOptions("http://example.test")

	assert.Equal(t, "http://example.test", opts.Endpoint)
	assert.Equal(t, 500*time.Millisecond, opts.ValidDuration)
	assert.Equal(t, 3, opts.MaxConcluded)
	assert.Equal(t, 4*time.Second, opts.Timeout)
	assert.EqualValues(t, "roku", opts.Platform)
}

func TestReplay_DryRun(t *testing.T) {
	report, err := NewSimulateService().Replay(context.Background(), SimulateOptions{
		Random: 3,
		Seed:   11,
		DryRun: true,
		Env:    "staging",
		Store:  testStore(),
	})

	require.NoError(t, err)
	assert.Positive(t, report.Steps)
	assert.False(t, impressions.DefaultRegistry().Initialized(), "replay leaves the process-wide manager closed")
	for _, p := range report.Payloads {
		assert.Equal(t, "device-1", p.DeviceID)
		require.NotNil(t, p.UserID)
		assert.Equal(t, 9, *p.UserID)
	}
}

func TestReplay_SavesScript(t *testing.T) {
	saveTo := filepath.Join(t.TempDir(), "session.json")

	first, err := NewSimulateService().Replay(context.Background(), SimulateOptions{
		Random: 2, Seed: 5, DryRun: true, Env: "staging", Store: testStore(), SaveTo: saveTo,
	})
	require.NoError(t, err)

	second, err := NewSimulateService().Replay(context.Background(), SimulateOptions{
		ScriptPath: saveTo, DryRun: true, Env: "staging", Store: testStore(),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Concluded, second.Concluded)
	assert.Equal(t, len(first.Payloads), len(second.Payloads))
}

func TestReplay_SendsToSink(t *testing.T) {
	server := sink.New(sink.Config{Buffer: 100})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := NewSimulateService().Replay(ctx, SimulateOptions{
		Random: 4,
		Seed:   3,
		URL:    ts.URL,
		Store:  testStore(),
	})

	require.NoError(t, err)
	assert.Equal(t, len(report.Payloads), server.Ring().Len())
}

func TestReplay_ScriptErrors(t *testing.T) {
	svc := NewSimulateService()
	ctx := context.Background()

	_, err := svc.Replay(ctx, SimulateOptions{Store: testStore()})
	requireCLIError(t, err, clierrors.ErrorTypeValidation)

	_, err = svc.Replay(ctx, SimulateOptions{ScriptPath: filepath.Join(t.TempDir(), "missing.json"), Store: testStore()})
	requireCLIError(t, err, clierrors.ErrorTypeFileNotFound)

	_, err = svc.Replay(ctx, SimulateOptions{ScriptPath: writeFile(t, "bad.json", "{"), Store: testStore()})
	requireCLIError(t, err, clierrors.ErrorTypeInvalidFormat)
}

func TestLoadPayload(t *testing.T) {
	p, err := LoadPayload(writeFile(t, "payload.json", validPayload))
	require.NoError(t, err)
	assert.Equal(t, "series_page", p.Page.Name())
	assert.Equal(t, 1, p.Tiles())

	_, err = LoadPayload(writeFile(t, "broken.json", "not json"))
	requireCLIError(t, err, clierrors.ErrorTypeInvalidFormat)

	_, err = LoadPayload(writeFile(t, "incomplete.json", `{"platform": "WEB"}`))
	requireCLIError(t, err, clierrors.ErrorTypeValidation)

	_, err = LoadPayload(filepath.Join(t.TempDir(), "nope.json"))
	requireCLIError(t, err, clierrors.ErrorTypeFileNotFound)
}

func TestSend_ToSink(t *testing.T) {
	server := sink.New(sink.Config{Buffer: 10})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	asked := false
	svc := NewSignalService(func(string) (bool, error) {
		asked = true
		return true, nil
	})

	require.NoError(t, svc.Send(writeFile(t, "payload.json", validPayload), "", ts.URL))

	assert.False(t, asked, "local sends need no confirmation")
	require.Equal(t, 1, server.Ring().Len())
	assert.Equal(t, "p-1", server.Ring().List(0)[0].Payload.PersonalizationID)
}

func TestSend_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"invalid_payload","message":"containers missing"}`))
	}))
	defer ts.Close()

	err := NewSignalService(nil).Send(writeFile(t, "payload.json", validPayload), "", ts.URL)

	requireCLIError(t, err, clierrors.ErrorTypeRejected)
	assert.Contains(t, err.Error(), "containers missing")
}

func TestSend_ProductionDeclined(t *testing.T) {
	var label string
	svc := NewSignalService(func(l string) (bool, error) {
		label = l
		return false, nil
	})

	err := svc.Send(writeFile(t, "payload.json", validPayload), "production", "")

	require.NoError(t, err)
	assert.Contains(t, label, "production")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTail(t *testing.T) {
	server := sink.New(sink.Config{Buffer: 10})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewTailService(out).Tail(ctx, ts.URL+"/ws") }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Connected to")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, NewSignalService(nil).Send(writeFile(t, "payload.json", validPayload), "", ts.URL))

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "ROKU") && strings.Contains(s, "series_page{series_id=7}")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Tail did not return after cancel")
	}
}
