package models

import (
	"time"

	dErrors "helpmoto/pkg/domain-errors"
)

// Record captures a user's consent decision for a (data type, purpose) pair.
//
// # Ledger Invariant
//
// Records are immutable and the per-user history is append-only. Revoking
// consent appends a new record with Granted=false; history is never
// rewritten. The current status of a pair is the Granted value of the
// chronologically last record matching it, ties broken by insertion order.
//
// This design gives the audit trail LGPD expects: every decision the user
// ever made stays on the ledger, including re-confirmations of the same
// state.
type Record struct {
	UserID    string    `json:"userId"`
	DataType  DataType  `json:"dataType"`
	Purpose   Purpose   `json:"purpose"`
	Granted   bool      `json:"granted"`
	Timestamp time.Time `json:"timestamp"`
	// Version is the privacy policy version the decision was made under.
	Version string `json:"version"`
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(userID string, dataType DataType, purpose Purpose, granted bool, timestamp time.Time, version string) (*Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID required")
	}
	if !dataType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid data type")
	}
	if !purpose.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid consent purpose")
	}
	if timestamp.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "timestamp required")
	}
	return &Record{
		UserID:    userID,
		DataType:  dataType,
		Purpose:   purpose,
		Granted:   granted,
		Timestamp: timestamp,
		Version:   version,
	}, nil
}

// Matches reports whether the record covers the given pair.
func (r Record) Matches(dataType DataType, purpose Purpose) bool {
	return r.DataType == dataType && r.Purpose == purpose
}

// CurrentStatus derives the effective consent state for a pair from an
// ordered history: the last matching record wins, absence means not granted.
func CurrentStatus(history []Record, dataType DataType, purpose Purpose) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Matches(dataType, purpose) {
			return history[i].Granted
		}
	}
	return false
}
