package service

import (
	"testing"

	"report-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawStats
		want domain.DashboardStats
	}{
		{
			name: "所有欄位齊全",
			raw: domain.RawStats{
				"total_reports":       float64(72),
				"in_progress_reports": float64(61),
				"resolved_reports":    float64(11),
				"active_reports":      float64(61),
			},
			want: domain.DashboardStats{IssuesRaised: 72, InProgress: 61, Resolved: 11, Total: 72},
		},
		{
			name: "舊版後端只有 active_reports",
			raw: domain.RawStats{
				"total_reports":    float64(72),
				"active_reports":   float64(61),
				"resolved_reports": float64(11),
			},
			want: domain.DashboardStats{IssuesRaised: 72, InProgress: 61, Resolved: 11, Total: 72},
		},
		{
			name: "空回應全部補 0",
			raw:  domain.RawStats{},
			want: domain.DashboardStats{},
		},
		{
			name: "nil map 也不能炸",
			raw:  nil,
			want: domain.DashboardStats{},
		},
		{
			name: "新版欄位是 0 時不退回舊版",
			raw: domain.RawStats{
				"in_progress_reports": float64(0),
				"active_reports":      float64(99),
			},
			want: domain.DashboardStats{InProgress: 0},
		},
		{
			name: "null 欄位視同不存在",
			raw: domain.RawStats{
				"total_reports":       nil,
				"in_progress_reports": nil,
				"active_reports":      float64(5),
			},
			want: domain.DashboardStats{InProgress: 5},
		},
		{
			name: "非數值欄位視同不存在",
			raw: domain.RawStats{
				"total_reports":    "lots",
				"resolved_reports": float64(3),
			},
			want: domain.DashboardStats{Resolved: 3},
		},
		{
			name: "負數夾到 0",
			raw: domain.RawStats{
				"total_reports":    float64(-5),
				"resolved_reports": float64(2),
			},
			want: domain.DashboardStats{Resolved: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 純函式：同樣的輸入跑兩次要得到一模一樣的結果
func TestNormalizeIdempotent(t *testing.T) {
	raw := domain.RawStats{
		"total_reports":    float64(10),
		"active_reports":   float64(4),
		"resolved_reports": float64(6),
	}

	first := Normalize(raw)
	second := Normalize(raw)
	assert.Equal(t, first, second)
}
