package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a log entry.
type EventType string

const (
	EventSMS     EventType = "sms"
	EventCall    EventType = "call"
	EventReply   EventType = "reply"
	EventOutcome EventType = "outcome"
)

// Reply values attached to reply events.
type Reply string

const (
	ReplyYes        Reply = "yes"
	ReplyNo         Reply = "no"
	ReplyNoReplyEOD Reply = "no_reply_eod"
)

// Entry is one append-only event record. It stores both the simulated day
// the event was emitted on and the appointment's own day, plus the
// calendar dates for each so clients need no extra lookups.
type Entry struct {
	ID                  uuid.UUID      `json:"id"`
	TS                  time.Time      `json:"ts"`
	SendDayIndex        int            `json:"send_day_index"`
	AppointmentDayIndex int            `json:"appointment_day_index"`
	SendDateISO         string         `json:"scheduled_date_iso"`
	AppointmentDateISO  string         `json:"appointment_date_iso"`
	AppointmentID       uuid.UUID      `json:"appointment_id"`
	PatientName         string         `json:"patient_name"`
	Type                EventType      `json:"type"`
	Variant             string         `json:"variant,omitempty"`
	Message             string         `json:"message"`
	Reply               Reply          `json:"reply,omitempty"`
	Extra               map[string]any `json:"extra,omitempty"`
}

// IsComm reports whether the entry records an outbound communication.
func (e *Entry) IsComm() bool {
	return e.Type == EventSMS || e.Type == EventCall
}
