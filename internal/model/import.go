package model

import "time"

// ImportStatus 导入日志状态
type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportSuccess    ImportStatus = "success"
	ImportFailed     ImportStatus = "failed"
)

// Session 一次上传形成的分析会话
type Session struct {
	ID         string          `json:"id"`
	Filename   string          `json:"filename"`
	Format     string          `json:"format"`
	Headers    []string        `json:"headers"`
	RowCount   int             `json:"rowCount"`
	Assessment ShapeAssessment `json:"assessment"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ImportLog 文件导入记录
type ImportLog struct {
	ID           int64        `json:"id"`
	SessionID    string       `json:"sessionId,omitempty"`
	Filename     string       `json:"filename"`
	FileSize     int64        `json:"fileSize"`
	FileHash     string       `json:"fileHash"`
	Status       ImportStatus `json:"status"`
	RowCount     int          `json:"rowCount"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}
