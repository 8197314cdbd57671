package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"report-dashboard/internal/conf"
	"report-dashboard/internal/domain"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// BackendClient 通報後端 API 的 HTTP Client
// 後端不太可靠：次要端點常常 404，附近查詢沒帶座標會 422
// 這裡的原則是「能吞就吞」，只有主統計端點徹底失敗才回傳錯誤
type BackendClient struct {
	BaseURL    string
	MaxRetries uint
	HTTPClient *http.Client
}

func NewBackendClient(cfg conf.UpstreamConfig) *BackendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BackendClient{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		MaxRetries: cfg.MaxRetries,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FetchStats 抓取原始統計數據
// 網路錯誤和 5xx 會重試 (指數退避)；4xx 直接放棄，重打也不會好
func (c *BackendClient) FetchStats(ctx context.Context) (domain.RawStats, error) {
	operation := func() (domain.RawStats, error) {
		raw, status, err := c.getJSON(ctx, "/api/stats", nil)
		if err != nil {
			return nil, err // 網路層錯誤 → 重試
		}

		switch {
		case status >= 200 && status < 300:
			var stats domain.RawStats
			if err := json.Unmarshal(raw, &stats); err != nil {
				// 回應不是 JSON object，重打也不會變，直接放棄
				return nil, backoff.Permanent(fmt.Errorf("統計回應解析失敗: %w", err))
			}
			return stats, nil
		case status >= 500:
			return nil, fmt.Errorf("統計端點回應 %d", status) // 5xx → 重試
		default:
			return nil, backoff.Permanent(fmt.Errorf("統計端點回應 %d", status))
		}
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.MaxRetries+1),
	)
}

// FetchAlerts 抓取公告列表
// 404 代表這個環境根本沒部署 alerts 端點，視為空列表
func (c *BackendClient) FetchAlerts(ctx context.Context) ([]domain.Alert, error) {
	raw, status, err := c.getJSON(ctx, "/api/alerts", nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		logrus.Debug("alerts 端點不存在 (404)，回傳空列表")
		return nil, nil
	case status >= 200 && status < 300:
		var alerts []domain.Alert
		if err := json.Unmarshal(raw, &alerts); err != nil {
			return nil, fmt.Errorf("alerts 回應解析失敗: %w", err)
		}
		return alerts, nil
	default:
		return nil, fmt.Errorf("alerts 端點回應 %d", status)
	}
}

// FetchNearbyReports 查詢附近案件
// loc 為 nil 時不帶座標參數，後端會回 422 (它就是要這兩個參數)
// 422 不重試，直接當空列表；重打也不會生出座標來
func (c *BackendClient) FetchNearbyReports(ctx context.Context, loc *domain.LocationSettings) ([]domain.NearbyReport, error) {
	q := url.Values{}
	if loc != nil {
		q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	}

	raw, status, err := c.getJSON(ctx, "/api/reports/nearby", q)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		logrus.Debug("附近案件查詢被退回 (422)，視為空列表")
		return nil, nil
	case status == http.StatusNotFound:
		return nil, nil
	case status >= 200 && status < 300:
		var reports []domain.NearbyReport
		if err := json.Unmarshal(raw, &reports); err != nil {
			return nil, fmt.Errorf("附近案件回應解析失敗: %w", err)
		}
		return reports, nil
	default:
		return nil, fmt.Errorf("附近案件端點回應 %d", status)
	}
}

// getJSON 底層 GET，回傳 body 與狀態碼
func (c *BackendClient) getJSON(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	// 限制讀取 1MB，統計回應不可能這麼大
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
