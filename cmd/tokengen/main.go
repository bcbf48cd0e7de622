// Package main provides a CLI tool for generating identity tokens for local
// development of the MiniMinds gateway. Tokens signed with the dev key are
// rejected in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"miniminds/internal/compliance/identity"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/config"
)

const defaultTokenTTL = time.Hour

type tokenOutput struct {
	Token     string            `json:"token"`
	UserID    string            `json:"user_id"`
	Role      models.Role       `json:"role"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	userID := flag.String("user-id", "", "User ID. A UUID is generated if empty.")
	role := flag.String("role", string(models.RoleParent), "Role: parent, teacher or admin")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	issuer := flag.String("issuer", "", "Issuer claim (must match identity.issuer when set)")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	signingKey := os.Getenv(config.EnvPrefix + "IDENTITY_SIGNING_KEY")
	keyType := "env"
	if signingKey == "" {
		signingKey = config.DevSigningKey
		keyType = "dev"
	}

	r := models.Role(*role)
	if models.ParseRole(*role) != r {
		fmt.Fprintf(os.Stderr, "Unknown role %q; use parent, teacher or admin\n", *role)
		os.Exit(1)
	}
	uid := *userID
	if uid == "" {
		uid = uuid.NewString()
	}

	svc := identity.NewService(signingKey, identity.WithIssuer(*issuer))
	token, err := svc.Issue(models.Principal{UserID: uid, Role: r}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			UserID:    uid,
			Role:      r,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Identity Token (JWT)")
	fmt.Println("====================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", *ttl)
	fmt.Printf("User ID:     %s\n", uid)
	fmt.Printf("Role:        %s\n", r)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" -H \"Content-Type: application/json\" \\")
	fmt.Println("       -d '{\"query\":\"What are the daycare hours?\"}' http://localhost:8080/v1/query")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
