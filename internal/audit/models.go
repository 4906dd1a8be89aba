package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionType is the closed set of auditable actions.
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
)

// Valid reports whether a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout:
		return true
	}
	return false
}

// Entry is one immutable audit record. Field names are part of the persisted
// contract that compliance exports depend on; application logic never mutates
// or deletes entries once written.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	ActionType  ActionType `json:"actionType"`
	EntityType  string     `json:"entityType"`
	EntityID    string     `json:"entityId"`
	Description string     `json:"description"`
	// Data is an opaque serialized snapshot (previous/new values, or a
	// deleted-entity snapshot) kept for display and forensics only.
	Data json.RawMessage `json:"data,omitempty"`
	// UserID references the acting principal; nil for system-attributed
	// events or when the actor record itself was removed.
	UserID *uuid.UUID `json:"userId,omitempty"`
	// UserEntityID references a User when the entity acted upon is itself a
	// User. Distinct from UserID: "who was affected", not "who did it".
	UserEntityID *uuid.UUID `json:"userEntityId,omitempty"`
	ProductID    *int64     `json:"productId,omitempty"`
}

// Event carries the record-time parameters for one audit entry. ID and
// Timestamp are assigned by the Recorder.
type Event struct {
	ActionType   ActionType
	EntityType   string
	EntityID     string
	Description  string
	Data         any
	UserID       *uuid.UUID
	UserEntityID *uuid.UUID
	ProductID    *int64
}

// Filter narrows audit queries. Zero-valued fields impose no constraint;
// set fields are ANDed.
type Filter struct {
	EntityType string
	ActionType ActionType
}
