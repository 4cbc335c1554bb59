package types

import "time"

// StatsSnapshot 全局数据量快照.
type StatsSnapshot struct {
	Users       int64     `json:"users"`
	Folders     int64     `json:"folders"`
	Files       int64     `json:"files"`
	PublicFiles int64     `json:"publicFiles"`
	StoredBytes int64     `json:"storedBytes"`
	TakenAt     time.Time `json:"takenAt"`
}

// SweepResult 孤儿对象清理结果.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Skipped int `json:"skipped"` // 未超过宽限期
	Deleted int `json:"deleted"`
}

// ManagementStatsResponse 管理统计响应.
type ManagementStatsResponse struct {
	Message    string     `json:"message"`
	UserRole   string     `json:"userRole"`
	Statistics *UserStats `json:"statistics"`
}

// ModerationDashboardResponse 审核面板响应.
type ModerationDashboardResponse struct {
	Message          string   `json:"message"`
	UserRole         string   `json:"userRole"`
	AvailableActions []string `json:"availableActions"`
}
