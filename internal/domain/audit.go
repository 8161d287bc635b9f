package domain

import "time"

// Audit actions recorded by the import pipeline.
const (
	AuditActionImport = "statement.import"
	AuditActionUndo   = "statement.undo"
)

// AuditLog is one entry in the audit trail. Imports and undos each leave a
// row so every batch mutation can be reconstructed later.
type AuditLog struct {
	ID           string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  map[string]any
	AfterState   map[string]any
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	UserID     string
	Action     string
	ResourceID string
	Limit      int
	Offset     int
}
