package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

func TestRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var req models.AuditRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)

		_ = json.NewEncoder(w).Encode(models.AuditResponse{
			Success:     true,
			CacheStatus: "miss",
			Timing:      models.TimingInfo{TotalMs: 40, FetchMs: 10, ExtractMs: 5, OracleMs: 25},
			Report: &models.TransformedReport{
				Scores: models.ReportScores{Overall: 71},
			},
		})
	}))
	defer srv.Close()

	rr := runOnce(srv.Client(), srv.URL, "k", models.AuditRequest{URL: "https://example.com"})

	assert.True(t, rr.Success)
	assert.Equal(t, http.StatusOK, rr.HTTPStatus)
	assert.Equal(t, int64(25), rr.OracleMs)
	assert.Equal(t, 71.0, rr.Score)
	assert.Equal(t, "miss", rr.CacheStatus)
}

func TestRunOnce_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error: &models.ErrorDetail{Code: "FETCH_FAILED", Message: "boom"},
		})
	}))
	defer srv.Close()

	rr := runOnce(srv.Client(), srv.URL, "", models.AuditRequest{URL: "https://example.com"})

	assert.False(t, rr.Success)
	assert.Equal(t, http.StatusBadGateway, rr.HTTPStatus)
	assert.Equal(t, "[FETCH_FAILED] boom", rr.Error)
}

func TestComputeAverages(t *testing.T) {
	assert.Nil(t, computeAverages([]runResult{{Success: false}}))

	avg := computeAverages([]runResult{
		{Success: true, TotalMs: 100, Score: 60},
		{Success: false, TotalMs: 9000},
		{Success: true, TotalMs: 300, Score: 80},
	})
	require.NotNil(t, avg)
	assert.Equal(t, 200.0, avg.TotalMs)
	assert.Equal(t, 70.0, avg.Score)
}

func TestMedianStatus(t *testing.T) {
	assert.Equal(t, 0, medianStatus(nil))
	assert.Equal(t, 200, medianStatus([]runResult{{HTTPStatus: 502}, {HTTPStatus: 200}, {HTTPStatus: 200}}))
}
