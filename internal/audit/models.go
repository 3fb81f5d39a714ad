package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	DataType  string
	Purpose   string
	Decision  string
	Reason    string
}

// Audit event actions
const (
	ActionConsentGranted   = "consent_granted"
	ActionConsentRevoked   = "consent_revoked"
	ActionConsentChecked   = "consent_checked"
	ActionSettingsUpdated  = "settings_updated"
	ActionDataExported     = "data_exported"
	ActionDataErased       = "data_erased"
	ActionDataAccessLogged = "data_access_logged"
)

// Audit event decisions
const (
	DecisionGranted = "granted"
	DecisionRevoked = "revoked"
	DecisionDenied  = "denied"
	DecisionErased  = "erased"
)

// Audit event reasons
const (
	ReasonUserInitiated  = "user_initiated"
	ReasonSettingsMirror = "settings_mirror"
	ReasonAdminInitiated = "admin_initiated"
)
