package service

import (
	"context"
	"time"

	"report-dashboard/internal/conf"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService 背景定期更新
// UI 輪詢拿到的是快照，真正去打後端的是這裡排的任務
type CronService struct {
	Cron      *cron.Cron
	Dashboard *DashboardService
	Config    conf.RefreshConfig
}

func NewCronService(dashboard *DashboardService, cfg conf.RefreshConfig) *CronService {
	return &CronService{
		Cron:      cron.New(),
		Dashboard: dashboard,
		Config:    cfg,
	}
}

// Start 啟動排程
func (s *CronService) Start() {
	if !s.Config.Enabled || s.Config.Schedule == "" {
		logrus.Info("背景更新排程已停用")
		return
	}

	_, err := s.Cron.AddFunc(s.Config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logrus.Debug("[Cron] 開始背景更新統計...")
		snap := s.Dashboard.Refresh(ctx)
		logrus.Debugf("[Cron] 背景更新完成 (seq=%d)", snap.Seq)
	})
	if err != nil {
		logrus.Errorf("排程註冊失敗: %v", err)
		return
	}

	s.Cron.Start()
	logrus.Infof("背景更新排程已啟動: %s", s.Config.Schedule)
}

// Stop 停止排程
func (s *CronService) Stop() {
	s.Cron.Stop()
}
