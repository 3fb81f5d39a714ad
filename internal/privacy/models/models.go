// Package models defines the privacy settings surface users toggle and its
// mapping onto consent ledger pairs.
package models

import "helpmoto/internal/consent/models"

// Settings is the per-user privacy toggle set. A user with no stored
// settings is treated as having everything switched off.
type Settings struct {
	DataCollection   bool `json:"dataCollection"`
	LocationTracking bool `json:"locationTracking"`
	Analytics        bool `json:"analytics"`
	Marketing        bool `json:"marketing"`
	Notifications    bool `json:"notifications"`
}

// SettingsPatch carries a partial update. Nil fields leave the stored value
// untouched, so callers can flip one toggle without knowing the rest.
type SettingsPatch struct {
	DataCollection   *bool `json:"dataCollection,omitempty"`
	LocationTracking *bool `json:"locationTracking,omitempty"`
	Analytics        *bool `json:"analytics,omitempty"`
	Marketing        *bool `json:"marketing,omitempty"`
	Notifications    *bool `json:"notifications,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.DataCollection == nil && p.LocationTracking == nil &&
		p.Analytics == nil && p.Marketing == nil && p.Notifications == nil
}

// MirrorPair names the consent ledger pair a settings toggle projects onto.
type MirrorPair struct {
	Setting  string
	DataType models.DataType
	Purpose  models.Purpose
}

// MirrorPairs is the complete projection table. The analytics toggle has no
// entry of its own: its ledger pair (behavioral, analytics) is owned by the
// dataCollection toggle, so flipping analytics changes stored settings only.
var MirrorPairs = []MirrorPair{
	{Setting: "dataCollection", DataType: models.DataTypeBehavioral, Purpose: models.PurposeAnalytics},
	{Setting: "locationTracking", DataType: models.DataTypeLocation, Purpose: models.PurposeServiceProvision},
	{Setting: "marketing", DataType: models.DataTypePersonal, Purpose: models.PurposeMarketing},
	{Setting: "notifications", DataType: models.DataTypePersonal, Purpose: models.PurposeCommunication},
}

// Apply merges the patch into s and returns the names of the toggles the
// patch actually set, in MirrorPairs order where applicable.
func (s *Settings) Apply(patch SettingsPatch) []string {
	var touched []string
	if patch.DataCollection != nil {
		s.DataCollection = *patch.DataCollection
		touched = append(touched, "dataCollection")
	}
	if patch.LocationTracking != nil {
		s.LocationTracking = *patch.LocationTracking
		touched = append(touched, "locationTracking")
	}
	if patch.Analytics != nil {
		s.Analytics = *patch.Analytics
		touched = append(touched, "analytics")
	}
	if patch.Marketing != nil {
		s.Marketing = *patch.Marketing
		touched = append(touched, "marketing")
	}
	if patch.Notifications != nil {
		s.Notifications = *patch.Notifications
		touched = append(touched, "notifications")
	}
	return touched
}

// Value returns the current boolean for a named toggle.
func (s Settings) Value(setting string) bool {
	switch setting {
	case "dataCollection":
		return s.DataCollection
	case "locationTracking":
		return s.LocationTracking
	case "analytics":
		return s.Analytics
	case "marketing":
		return s.Marketing
	case "notifications":
		return s.Notifications
	}
	return false
}
