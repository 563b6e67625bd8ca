package models

import (
	"database/sql"
	"time"
)

// SyncTask is one persisted unit of work for the spreadsheet sync worker.
type SyncTask struct {
	ID          int64
	TaskType    string
	BookingID   int64
	Payload     string
	Status      string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt sql.NullTime
	NextRetryAt sql.NullTime
}
