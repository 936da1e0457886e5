package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditResultRegraded AuditEventType = "result_regraded"
)

// AuditLog records a change a person made to stored grading data.
type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;size:50;index"`

	// Actor information
	ActorID string `json:"actor_id" gorm:"not null;size:255;index"`

	// Target information
	TargetType string `json:"target_type" gorm:"not null;size:50;index"`
	TargetID   uint   `json:"target_id" gorm:"not null;index"`

	Description string         `json:"description" gorm:"not null;type:text"`
	Changes     datatypes.JSON `json:"changes" gorm:"type:jsonb"` // before/after values

	RequestID *string `json:"request_id" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditChange is the before/after pair stored in AuditLog.Changes
type AuditChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

func NewAuditLog(eventType AuditEventType, actorID, targetType string, targetID uint, description string, change AuditChange) (*AuditLog, error) {
	raw, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit changes: %w", err)
	}
	return &AuditLog{
		EventType:   eventType,
		ActorID:     actorID,
		TargetType:  targetType,
		TargetID:    targetID,
		Description: description,
		Changes:     raw,
	}, nil
}
