package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "helpmoto/pkg/domain-errors"
)

func TestDataType_IsValid(t *testing.T) {
	for dt := range ValidDataTypes {
		assert.True(t, dt.IsValid(), dt)
	}
	assert.False(t, DataType("biometric").IsValid())
	assert.False(t, DataType("").IsValid())
}

func TestPurpose_IsValid(t *testing.T) {
	for p := range ValidPurposes {
		assert.True(t, p.IsValid(), p)
	}
	assert.False(t, Purpose("advertising").IsValid())
	assert.False(t, Purpose("").IsValid())
}

func TestNewRecord_InvariantChecks(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		userID    string
		dataType  DataType
		purpose   Purpose
		timestamp time.Time
	}{
		{"missing user ID", "", DataTypeLocation, PurposeServiceProvision, now},
		{"invalid data type", "u1", "bogus", PurposeServiceProvision, now},
		{"invalid purpose", "u1", DataTypeLocation, "bogus", now},
		{"zero timestamp", "u1", DataTypeLocation, PurposeServiceProvision, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.userID, tt.dataType, tt.purpose, true, tt.timestamp, "1.0")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}

	rec, err := NewRecord("u1", DataTypeLocation, PurposeServiceProvision, true, now, "1.0")
	require.NoError(t, err)
	assert.True(t, rec.Granted)
	assert.Equal(t, "1.0", rec.Version)
}

func TestCurrentStatus_LastWriteWins(t *testing.T) {
	now := time.Now()
	history := []Record{
		{UserID: "u1", DataType: DataTypeLocation, Purpose: PurposeServiceProvision, Granted: true, Timestamp: now},
		{UserID: "u1", DataType: DataTypePersonal, Purpose: PurposeMarketing, Granted: true, Timestamp: now},
		{UserID: "u1", DataType: DataTypeLocation, Purpose: PurposeServiceProvision, Granted: false, Timestamp: now},
	}

	assert.False(t, CurrentStatus(history, DataTypeLocation, PurposeServiceProvision))
	assert.True(t, CurrentStatus(history, DataTypePersonal, PurposeMarketing))
	assert.False(t, CurrentStatus(history, DataTypeBehavioral, PurposeAnalytics), "absence means not granted")
	assert.False(t, CurrentStatus(nil, DataTypeLocation, PurposeServiceProvision))
}
