package api

import (
	"context"
	"net/http"
	"time"

	"report-dashboard/internal/domain"
	"report-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// GetStats 回傳目前的儀表板統計
// Cache-first：先把手上這份丟回去讓 UI 馬上有東西畫，
// 同時在背景觸發一次更新，新數據下次輪詢就拿得到
func (h *DashboardHandler) GetStats(c *gin.Context) {
	snap := h.Dashboard.Current()

	// 背景更新，不阻塞 HTTP Response
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		h.Dashboard.Refresh(ctx)
	}()

	c.JSON(http.StatusOK, gin.H{
		"data":       snap.Stats,
		"fetched_at": snap.FetchedAt,
	})
}

// RefreshStats 同步更新後回傳最新統計 (下拉更新用)
func (h *DashboardHandler) RefreshStats(c *gin.Context) {
	snap := h.Dashboard.Refresh(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"data":       snap.Stats,
		"fetched_at": snap.FetchedAt,
	})
}

// GetAlerts 公告列表，永遠 200 + 陣列 (可能是空的)
func (h *DashboardHandler) GetAlerts(c *gin.Context) {
	alerts := h.Dashboard.Alerts(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"data":  alerts,
		"total": len(alerts),
	})
}

// nearbyQuery lat/lng 一起帶或一起不帶，格式錯誤由 binding 擋下
type nearbyQuery struct {
	Lat *float64 `form:"lat"`
	Lng *float64 `form:"lng"`
}

// GetNearbyReports 附近案件列表，永遠 200 + 陣列
func (h *DashboardHandler) GetNearbyReports(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "座標格式錯誤"})
		return
	}

	var loc *domain.LocationSettings
	if q.Lat != nil && q.Lng != nil {
		loc = &domain.LocationSettings{Lat: *q.Lat, Lng: *q.Lng}
	}

	reports := h.Dashboard.NearbyReports(c.Request.Context(), loc)

	c.JSON(http.StatusOK, gin.H{
		"data":  reports,
		"total": len(reports),
	})
}

// GetLocation 讀取預設座標
func (h *DashboardHandler) GetLocation(c *gin.Context) {
	loc := h.Dashboard.Location()
	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loc})
}

// SaveLocation 儲存預設座標 (binding 會驗座標範圍)
func (h *DashboardHandler) SaveLocation(c *gin.Context) {
	var loc domain.LocationSettings
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "座標不合法: " + err.Error()})
		return
	}

	h.Dashboard.SaveLocation(c.Request.Context(), loc)
	logrus.Debugf("已更新預設座標: %.4f,%.4f", loc.Lat, loc.Lng)

	c.JSON(http.StatusOK, gin.H{"message": "已儲存"})
}

// Healthz 健康檢查
func (h *DashboardHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
