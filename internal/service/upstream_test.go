package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"report-dashboard/internal/conf"
	"report-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewBackendClient(conf.UpstreamConfig{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
}

func TestFetchStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_reports": 72, "in_progress_reports": 61, "resolved_reports": 11}`))
	})

	raw, err := client.FetchStats(context.Background())
	require.NoError(t, err)

	v, ok := raw.Int(domain.FieldTotalReports)
	assert.True(t, ok)
	assert.Equal(t, 72, v)
}

// 5xx 是暫時性錯誤，要重試到成功為止 (上限內)
func TestFetchStatsRetriesOn5xx(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"total_reports": 5}`))
	})

	raw, err := client.FetchStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	v, _ := raw.Int(domain.FieldTotalReports)
	assert.Equal(t, 5, v)
}

// 4xx 重打也不會好，不准重試
func TestFetchStatsNoRetryOn4xx(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.FetchStats(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

// alerts 端點沒部署 (404) 是正常情況，當空列表
func TestFetchAlertsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	alerts, err := client.FetchAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestFetchAlerts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/alerts", r.URL.Path)
		w.Write([]byte(`[{"id":"a1","title":"道路封閉","severity":"warning"}]`))
	})

	alerts, err := client.FetchAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "道路封閉", alerts[0].Title)
}

// 座標缺漏 → 後端 422 → 空列表，而且只打一次
func TestFetchNearbyReports422(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Empty(t, r.URL.Query().Get("lat"))
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	reports, err := client.FetchNearbyReports(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchNearbyReports(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25.033", r.URL.Query().Get("lat"))
		assert.Equal(t, "121.5654", r.URL.Query().Get("lng"))
		w.Write([]byte(`[{"id":"r1","title":"路燈不亮","status":"open","lat":25.034,"lng":121.564,"distance_m":120}]`))
	})

	loc := &domain.LocationSettings{Lat: 25.033, Lng: 121.5654}
	reports, err := client.FetchNearbyReports(context.Background(), loc)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "open", reports[0].Status)
}
