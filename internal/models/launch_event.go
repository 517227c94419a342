package models

import (
	"time"

	"gorm.io/gorm"
)

// LaunchEvent is one attempt to start an external program
type LaunchEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind      string         `gorm:"not null;index" json:"kind"` // "render" or "sound"
	Command   string         `gorm:"not null" json:"command"`
	Args      string         `gorm:"not null" json:"args"` // space separated
	Failed    bool           `gorm:"not null;default:false" json:"failed"`
	ErrorMsg  string         `json:"error_msg,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SessionSummary aggregates the launches of one overlay session
type SessionSummary struct {
	SessionID      string    `json:"session_id"`
	Started        time.Time `json:"started"`
	LastEvent      time.Time `json:"last_event"`
	Renders        int       `json:"renders"`
	Clicks         int       `json:"clicks"`
	FailedLaunches int       `json:"failed_launches"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month", "all"
}

type Report struct {
	Period        ReportPeriod     `json:"period"`
	Sessions      []SessionSummary `json:"sessions"`
	TotalClicks   int              `json:"total_clicks"`
	TotalFailures int              `json:"total_failures"`
	SessionErrors int              `json:"session_errors"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
