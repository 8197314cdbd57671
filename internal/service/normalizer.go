package service

import (
	"report-dashboard/internal/domain"

	"github.com/sirupsen/logrus"
)

// Normalize 把後端原始統計轉成 UI 要的穩定格式
// 純函式，永遠不會失敗：缺欄位、null、非數值一律補 0
// 行動端曾經因為欄位名不一致整片儀表板開天窗，所以這裡逐欄做 fallback
func Normalize(raw domain.RawStats) domain.DashboardStats {
	stats := domain.DashboardStats{}

	// 1. 回報總數 (issuesRaised 和 total 都來自 total_reports)
	if v, ok := raw.Int(domain.FieldTotalReports); ok {
		stats.IssuesRaised = v
		stats.Total = v
	}

	// 2. 處理中：新版欄位優先，沒有才退回舊版 active_reports
	// 注意是「存在與否」判斷，新版欄位就算是 0 也算數
	if v, ok := raw.Int(domain.FieldInProgressReports); ok {
		stats.InProgress = v
	} else if v, ok := raw.Int(domain.FieldActiveReports); ok {
		stats.InProgress = v
	}

	// 3. 已解決
	if v, ok := raw.Int(domain.FieldResolvedReports); ok {
		stats.Resolved = v
	}

	logrus.Debugf("正規化結果: raised=%d inProgress=%d resolved=%d total=%d",
		stats.IssuesRaised, stats.InProgress, stats.Resolved, stats.Total)

	return stats
}
