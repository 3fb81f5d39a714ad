package models

// DataType classifies personal data under LGPD categories.
type DataType string

const (
	DataTypePersonal   DataType = "personal"   // name, email, phone
	DataTypeSensitive  DataType = "sensitive"  // CPF, biometrics
	DataTypeLocation   DataType = "location"   // geolocation data
	DataTypeBehavioral DataType = "behavioral" // usage history
	DataTypeFinancial  DataType = "financial"  // payment data
)

// ValidDataTypes is the single source of truth for all valid data types.
var ValidDataTypes = map[DataType]bool{
	DataTypePersonal:   true,
	DataTypeSensitive:  true,
	DataTypeLocation:   true,
	DataTypeBehavioral: true,
	DataTypeFinancial:  true,
}

// IsValid checks if the data type is one of the supported enum values.
func (d DataType) IsValid() bool {
	return ValidDataTypes[d]
}

// Purpose labels why data is processed. Purpose binding allows selective
// revocation without affecting other flows.
type Purpose string

const (
	PurposeServiceProvision Purpose = "service_provision"
	PurposeCommunication    Purpose = "communication"
	PurposeSecurity         Purpose = "security"
	PurposeAnalytics        Purpose = "analytics"
	PurposeMarketing        Purpose = "marketing"
)

// ValidPurposes is the single source of truth for all valid consent purposes.
var ValidPurposes = map[Purpose]bool{
	PurposeServiceProvision: true,
	PurposeCommunication:    true,
	PurposeSecurity:         true,
	PurposeAnalytics:        true,
	PurposeMarketing:        true,
}

// IsValid checks if the consent purpose is one of the supported enum values.
func (p Purpose) IsValid() bool {
	return ValidPurposes[p]
}
