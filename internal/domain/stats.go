package domain

import "time"

// RawStats 後端統計 API 的原始回應
// 欄位可能缺漏、為 null、甚至在不同後端版本間換過名字，所以用 map 接
type RawStats map[string]any

// 後端已知的欄位名稱 (避免打錯字)
const (
	FieldTotalReports      = "total_reports"
	FieldInProgressReports = "in_progress_reports"
	FieldResolvedReports   = "resolved_reports"
	FieldActiveReports     = "active_reports" // 舊版後端的「處理中」欄位
)

// Int 取出指定欄位的整數值
// 第二個回傳值表示欄位是否存在且為數值 (null / 非數值視同不存在)
// 負數一律夾到 0，儀表板不接受負的統計數字
func (r RawStats) Int(key string) (int, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}

	var n int
	switch t := v.(type) {
	case float64: // encoding/json 預設把 JSON 數字解成 float64
		n = int(t)
	case int:
		n = t
	case int64:
		n = int(t)
	default:
		// 字串或其他型別一律視為髒資料
		return 0, false
	}

	if n < 0 {
		n = 0
	}
	return n, true
}

// DashboardStats 給行動端 UI 的穩定格式
// 四個欄位永遠有值；json tag 是前端綁定用的名稱，不能改
type DashboardStats struct {
	IssuesRaised int `bson:"issues_raised" json:"issuesRaised"`
	InProgress   int `bson:"in_progress" json:"inProgress"`
	Resolved     int `bson:"resolved" json:"resolved"`
	Total        int `bson:"total" json:"total"`
}

// Snapshot 最近一次正規化的結果 + 抓取資訊
// Seq 單調遞增，用來丟棄比較慢回來的舊請求 (last-write-wins)
type Snapshot struct {
	Stats     DashboardStats `bson:"stats" json:"stats"`
	Seq       uint64         `bson:"seq" json:"seq"`
	FetchedAt time.Time      `bson:"fetched_at" json:"fetched_at"`
}
