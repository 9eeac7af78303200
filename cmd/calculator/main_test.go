package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trio-ev/internal/client"
	"github.com/yourusername/trio-ev/internal/config"
	"github.com/yourusername/trio-ev/internal/health"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.LoadWithDefaults("testdata/does-not-exist.yaml")
	require.NoError(t, err)
	require.NoError(t, config.Validate(c))
	return c
}

func TestRunEvaluateText(t *testing.T) {
	var buf bytes.Buffer
	err := runEvaluate(&buf, defaultConfig(t), evaluateOptions{
		total:      10,
		excluded:   []string{"3", "7"},
		confidence: 80,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Excluded:        2 (3, 7)")
	assert.Contains(t, out, "Tickets:         56 of 120")
	assert.Contains(t, out, "Payout rate:     75%")
	assert.Contains(t, out, "Expected value:  1.286")
}

func TestRunEvaluateInfeasible(t *testing.T) {
	var buf bytes.Buffer
	err := runEvaluate(&buf, defaultConfig(t), evaluateOptions{
		total:      5,
		excluded:   []string{"1", "2", "3"},
		confidence: 100,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no trio can be boxed")
	assert.Contains(t, buf.String(), "Expected value:  0\n")
}

func TestRunEvaluateJSON(t *testing.T) {
	var buf bytes.Buffer
	err := runEvaluate(&buf, defaultConfig(t), evaluateOptions{
		total:      18,
		excluded:   []string{"1", "2", "3", "4", "5"},
		confidence: 60,
		asJSON:     true,
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "1.284", got["expected_value"])
	assert.Equal(t, float64(5), got["excluded_count"])
}

func TestRunEvaluateRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	err := runEvaluate(&buf, defaultConfig(t), evaluateOptions{total: 10, confidence: 250})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	assert.Contains(t, buf.String(), "calculator dev")
	assert.Contains(t, buf.String(), "commit:  unknown")
}

func newStatusClient(url string) *client.Client {
	cfg := client.DefaultConfig(url)
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return client.New(cfg, nil)
}

func TestRunStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(health.HealthResponse{Status: "ok", Service: "trio-ev", Version: "test"})
	})
	var ready atomic.Bool
	ready.Store(true)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		resp := health.ReadyResponse{Status: "ok", Checks: map[string]string{"service": "ok", "templates": "ok"}}
		status := http.StatusOK
		if !ready.Load() {
			resp.Status = "not_ready"
			resp.Checks["service"] = "not_ready"
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var buf bytes.Buffer
	require.NoError(t, runStatus(context.Background(), &buf, newStatusClient(srv.URL)))
	assert.Contains(t, buf.String(), "Health:  ok (trio-ev test)")
	assert.Contains(t, buf.String(), "Ready:   ok")
	assert.Contains(t, buf.String(), "templates")

	ready.Store(false)
	buf.Reset()
	err := runStatus(context.Background(), &buf, newStatusClient(srv.URL))
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "Ready:   not_ready")
}

func TestRunStatusUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var buf bytes.Buffer
	err := runStatus(context.Background(), &buf, newStatusClient(srv.URL))
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "UNAVAILABLE")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	c := defaultConfig(t)
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 0
	c.Cache.FlushSchedule = "0 4 * * *"

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, c, log)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
