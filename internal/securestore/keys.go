package securestore

// Key naming is one logical record per key, namespaced by user ID. The
// fixed erasure set below is the full per-user footprint; adding a new
// per-user key means extending ErasureKeys or the data outlives the account.

// AccessLogKey stores the global data-access log. Not per-user: the cap is
// enforced across the whole store.
const AccessLogKey = "access_logs"

// ProfileKey stores the user's profile record.
func ProfileKey(userID string) string { return "user_" + userID }

// ConsentKey stores the user's full ordered consent history.
func ConsentKey(userID string) string { return "consent_" + userID }

// PreferencesKey stores the user's privacy settings projection.
func PreferencesKey(userID string) string { return "preferences_" + userID }

// LocationKey stores the user's cached location data.
func LocationKey(userID string) string { return "location_" + userID }

// PaymentKey stores the user's payment information.
func PaymentKey(userID string) string { return "payment_" + userID }

// ErasureKeys enumerates every per-user key removed by a
// right-to-be-forgotten request.
func ErasureKeys(userID string) []string {
	return []string{
		ProfileKey(userID),
		ConsentKey(userID),
		PreferencesKey(userID),
		LocationKey(userID),
		PaymentKey(userID),
	}
}
