package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlugLength is the length of public payment link slugs
const SlugLength = 11

// BuyOrderMaxLength is the maximum length Webpay accepts for a buy order
const BuyOrderMaxLength = 26

// GenerateSlug returns a short, URL-safe, unguessable slug
func GenerateSlug() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a uuid
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:SlugLength]
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) > SlugLength {
		s = s[:SlugLength]
	}
	return s
}

// GenerateBuyOrder returns a unique merchant order reference: a timestamp
// prefix plus a random suffix, capped at BuyOrderMaxLength characters.
func GenerateBuyOrder() string {
	timestamp := time.Now().Format("20060102150405")
	randomPart := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	order := timestamp + randomPart
	if len(order) > BuyOrderMaxLength {
		order = order[:BuyOrderMaxLength]
	}
	return order
}

// GenerateSessionID returns a gateway session identifier
func GenerateSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GenerateUUIDv7 generates a new UUID v7
func GenerateUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails (highly unlikely)
		return uuid.New()
	}
	return id
}
