package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"report-dashboard/internal/domain"
	"report-dashboard/internal/repository"

	"github.com/sirupsen/logrus"
)

// DashboardService 儀表板狀態的唯一持有者
// 最新快照放在這裡 (不用全域變數)，更新一律走 applySnapshot
// Mongo 只是快取：讀寫失敗都只記 log，儀表板照常出數據
type DashboardService struct {
	Repo     repository.SnapshotRepository
	Backend  *BackendClient
	Notifier *NotifierService

	// 連續失敗幾次才發降級告警
	FailureThreshold int

	seqCounter uint64 // 發號器，每次 Refresh 拿一個號

	mu          sync.Mutex
	current     domain.Snapshot
	savedLoc    *domain.LocationSettings
	consecFails int
}

func NewDashboardService(repo repository.SnapshotRepository, backend *BackendClient, notifier *NotifierService, failureThreshold int) *DashboardService {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	return &DashboardService{
		Repo:             repo,
		Backend:          backend,
		Notifier:         notifier,
		FailureThreshold: failureThreshold,
	}
}

// Current 目前的快照；還沒抓過就是零值 (四個欄位都是 0，不會缺)
func (s *DashboardService) Current() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LoadCached 開機時先把上次的快照從 Mongo 撈回來 (cache-first)
// 快取壞掉不是大事，記 log 繼續跑，等第一次 Refresh 補上
func (s *DashboardService) LoadCached(ctx context.Context) {
	snap, err := s.Repo.LoadSnapshot(ctx)
	if err != nil {
		logrus.Warnf("讀取快照快取失敗，以無快取模式啟動: %v", err)
		return
	}
	if snap == nil {
		logrus.Info("沒有既存快照，等待第一次更新")
		return
	}

	s.mu.Lock()
	if s.current.Seq == 0 { // 還沒有任何新資料進來才套用
		s.current = *snap
	}
	s.mu.Unlock()

	// 發號器要接在快取的序號後面，否則新抓的資料會被誤判成舊的
	atomic.StoreUint64(&s.seqCounter, snap.Seq)

	// 順手把預設座標也撈回來
	if loc, err := s.Repo.GetLocation(ctx); err != nil {
		logrus.Warnf("讀取座標設定失敗: %v", err)
	} else if loc != nil {
		s.mu.Lock()
		s.savedLoc = loc
		s.mu.Unlock()
	}

	logrus.Infof("已載入快取快照 (seq=%d, fetched_at=%s)", snap.Seq, snap.FetchedAt.Format(time.RFC3339))
}

// Refresh 抓一次後端統計並套用
// 永遠回傳一份可渲染的快照：抓失敗就回目前那份 (可能是舊的或零值)
// 兩個 Refresh 同時在跑時，後發先至的新結果贏，慢回來的舊結果直接丟掉
func (s *DashboardService) Refresh(ctx context.Context) domain.Snapshot {
	seq := atomic.AddUint64(&s.seqCounter, 1)

	raw, err := s.Backend.FetchStats(ctx)
	if err != nil {
		logrus.Warnf("統計更新失敗 (seq=%d)，沿用現有快照: %v", seq, err)
		s.recordFailure(err)
		return s.Current()
	}

	snap := domain.Snapshot{
		Stats:     Normalize(raw),
		Seq:       seq,
		FetchedAt: time.Now(),
	}

	s.mu.Lock()
	s.consecFails = 0
	if seq <= s.current.Seq {
		// 有更新的結果已經先套用了，這份是過期的
		logrus.Debugf("丟棄過期的更新結果 (seq=%d <= %d)", seq, s.current.Seq)
		snap = s.current
		s.mu.Unlock()
		return snap
	}
	s.current = snap
	s.mu.Unlock()

	// 寫回快取 (best-effort)
	if err := s.Repo.SaveSnapshot(ctx, snap); err != nil {
		logrus.Warnf("寫入快照快取失敗，本次結果僅存在記憶體: %v", err)
	}

	return snap
}

// recordFailure 累計連續失敗次數，達標就告警
func (s *DashboardService) recordFailure(err error) {
	s.mu.Lock()
	s.consecFails++
	fails := s.consecFails
	s.mu.Unlock()

	if fails == s.FailureThreshold && s.Notifier != nil {
		s.Notifier.NotifyDegraded(fails, err)
	}
}

// Alerts 公告列表；任何錯誤都降級成空列表，不往 UI 丟
func (s *DashboardService) Alerts(ctx context.Context) []domain.Alert {
	alerts, err := s.Backend.FetchAlerts(ctx)
	if err != nil {
		logrus.Warnf("抓取公告失敗，回傳空列表: %v", err)
		return []domain.Alert{}
	}
	if alerts == nil {
		return []domain.Alert{}
	}
	return alerts
}

// NearbyReports 附近案件
// 沒帶座標就用儲存的預設座標；兩邊都沒有就照樣打 (後端會 422，吞掉變空列表)
func (s *DashboardService) NearbyReports(ctx context.Context, loc *domain.LocationSettings) []domain.NearbyReport {
	if loc == nil {
		s.mu.Lock()
		loc = s.savedLoc
		s.mu.Unlock()
	}

	reports, err := s.Backend.FetchNearbyReports(ctx, loc)
	if err != nil {
		logrus.Warnf("查詢附近案件失敗，回傳空列表: %v", err)
		return []domain.NearbyReport{}
	}
	if reports == nil {
		return []domain.NearbyReport{}
	}
	return reports
}

// SaveLocation 更新預設座標
// 記憶體一定更新；Mongo 寫失敗只記 log (下次重啟會掉，可接受)
func (s *DashboardService) SaveLocation(ctx context.Context, loc domain.LocationSettings) {
	s.mu.Lock()
	s.savedLoc = &loc
	s.mu.Unlock()

	if err := s.Repo.SaveLocation(ctx, loc); err != nil {
		logrus.Warnf("寫入座標設定失敗: %v", err)
	}
}

// Location 目前的預設座標；沒設定過回 nil
func (s *DashboardService) Location() *domain.LocationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.savedLoc == nil {
		return nil
	}
	loc := *s.savedLoc
	return &loc
}
