// Package main provides a CLI tool for generating test tokens for the
// privacy API. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"helpmoto/internal/jwtauth"
	"helpmoto/internal/platform/middleware"
)

const (
	// Dev signing key - matches config.go when HELPMOTO_JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "helpmoto"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	userID := flag.String("user-id", "", "User ID. Generated if empty.")
	scopes := flag.String("scopes", "", "Comma-separated scopes")
	admin := flag.Bool("admin", false, "Include the "+middleware.ScopeAdmin+" scope")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "HS256 signing key")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	uid := *userID
	if uid == "" {
		uid = uuid.NewString()
	}

	scopeList := parseScopes(*scopes)
	if *admin {
		scopeList = append(scopeList, middleware.ScopeAdmin)
	}

	svc := jwtauth.NewService(*signingKey, defaultIssuer, *ttl)
	token, err := svc.GenerateToken(uid, scopeList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"user_id": uid,
				"scope":   scopeList,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Printf("User ID:    %s\n", uid)
	if len(scopeList) > 0 {
		fmt.Printf("Scopes:     %v\n", scopeList)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/privacy/settings")
}

func parseScopes(scopes string) []string {
	if scopes == "" {
		return nil
	}
	parts := strings.Split(scopes, ",")
	result := make([]string, 0, len(parts))
	for _, s := range parts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
