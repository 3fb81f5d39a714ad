// Package privacy provides helpers for masking personally identifiable
// information before it leaves the trust boundary, following LGPD
// anonymization requirements.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
//
// For IPv4 addresses, the last octet is zeroed (e.g., "192.168.1.47" ->
// "192.168.1.0"), masking to a /24 network. For IPv6 addresses, only the /48
// prefix is kept (e.g., "2001:db8:85a3::8a2e:370:7334" -> "2001:0db8:85a3::").
//
// Returns "invalid" for unparseable addresses and "unknown" for empty input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// AnonymousID derives a stable pseudonymous identifier from a user ID. The
// same user always maps to the same ID, but the ID cannot be reversed.
func AnonymousID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}

// MaskEmail keeps the first character of the local part and the full domain:
// "ana.souza@example.com" -> "a***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskPhone keeps only the last two digits: "+5511987654321" -> "***21".
func MaskPhone(phone string) string {
	digits := keepDigits(phone)
	if len(digits) < 2 {
		return "***"
	}
	return "***" + digits[len(digits)-2:]
}

// MaskDocument keeps only the last two digits of a national document number
// such as a CPF: "123.456.789-09" -> "***09".
func MaskDocument(document string) string {
	return MaskPhone(document)
}

// MaskName keeps the first letter of each name part: "Ana Souza" -> "A. S.".
func MaskName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "***"
	}
	initials := make([]string, len(parts))
	for i, part := range parts {
		initials[i] = string([]rune(part)[0]) + "."
	}
	return strings.Join(initials, " ")
}

// piiMaskers maps profile field names to their masking functions. Fields not
// listed pass through unchanged.
var piiMaskers = map[string]func(string) string{
	"name":     MaskName,
	"email":    MaskEmail,
	"phone":    MaskPhone,
	"document": MaskDocument,
	"cpf":      MaskDocument,
}

// AnonymizeProfile returns a copy of the profile with known PII fields masked
// and a pseudonymous "anonymousId" derived from the user ID. The input map is
// not modified.
func AnonymizeProfile(userID string, profile map[string]any) map[string]any {
	masked := make(map[string]any, len(profile)+1)
	for field, value := range profile {
		if masker, ok := piiMaskers[field]; ok {
			if text, isString := value.(string); isString {
				masked[field] = masker(text)
				continue
			}
		}
		masked[field] = value
	}
	masked["anonymousId"] = AnonymousID(userID)
	return masked
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
