package model

import (
	"encoding/json"
	"time"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types written to the outbox.
const (
	EventAssignmentUpserted   = "assignment.upserted"
	EventAssignmentDeleted    = "assignment.deleted"
	EventPatientStatusChanged = "patient.status_changed"
	EventPatientRejected      = "patient.rejected"
	EventPatientCreated       = "patient.created"
	EventReplySent            = "reply.sent"
)

type OutboxEvent struct {
	ID           int64           `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// NewOutboxEvent marshals payload into a pending event.
func NewOutboxEvent(eventType string, payload interface{}) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		EventType: eventType,
		Payload:   data,
		Status:    OutboxStatusPending,
	}, nil
}

// StatusChange is the payload of patient.status_changed.
type StatusChange struct {
	PatientID int64         `json:"paciente_id"`
	From      PatientStatus `json:"desde"`
	To        PatientStatus `json:"hasta"`
	Reason    string        `json:"origen"`
	At        time.Time     `json:"fecha"`
}
