package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ChefJodlak/prooptica-sub000/internal/config"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, calMetrics, wizMetrics := setupMetrics()
	require.NotNil(t, handler)

	calMetrics.RecordResponse("ok")
	wizMetrics.RecordRepair()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "prooptica_calendar_responses_total")
	assert.Contains(t, rr.Body.String(), "prooptica_wizard_repairs_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestSetupSnapshotsDisabledWithoutBucket(t *testing.T) {
	assert.Nil(t, setupSnapshots(context.Background(), &appconfig.Config{}, logging.New("error")))
}

func TestSetupSnapshotsWithBucket(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:           "eu-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
		SnapshotBucket:      "calendar-snapshots",
	}
	sink := setupSnapshots(context.Background(), cfg, logging.New("error"))
	require.NotNil(t, sink)
	assert.True(t, sink.Enabled())
}

func TestBuildAppInMemory(t *testing.T) {
	cfg := &appconfig.Config{
		Timezone:              "Europe/Warsaw",
		UpstreamTimeout:       time.Second,
		UpstreamSessionCookie: "PHPSESSID",
		CalendarRateLimit:     1,
		CalendarRateBurst:     1,
	}
	a, err := buildApp(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Contains(t, body, "salons")

	rr = httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/calendar?specialist=unknown", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
