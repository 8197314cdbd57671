package domain

import "time"

// Alert 後端推播的公告/警示，原樣轉給前端
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Severity  string    `json:"severity"` // e.g. "info", "warning"
	CreatedAt time.Time `json:"created_at"`
}

// NearbyReport 附近的通報案件 (依座標查詢)
type NearbyReport struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"` // e.g. "open", "in_progress", "resolved"
	Category  string  `json:"category"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	DistanceM float64 `json:"distance_m"` // 與查詢座標的距離 (公尺)
}

// LocationSettings 使用者儲存的預設座標
// 附近案件查詢沒帶參數時用這組；後端沒座標會回 422
type LocationSettings struct {
	Lat float64 `bson:"lat" json:"lat" binding:"min=-90,max=90"`
	Lng float64 `bson:"lng" json:"lng" binding:"min=-180,max=180"`
}
