package model

import "time"

// ImportLog 导入日志
type ImportLog struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batchId"`
	Source       string     `json:"source"`
	Filename     string     `json:"filename"`
	TotalSheets  int        `json:"totalSheets"`
	ImportedRows int        `json:"importedRows"`
	ErrorRows    int        `json:"errorRows"`
	Status       string     `json:"status"` // processing / success / failed
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
