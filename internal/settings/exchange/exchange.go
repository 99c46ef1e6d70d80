// Package exchange implements the settings export/import envelope.
//
// The exchange format is a JSON object with exactly three top-level fields:
// the full document, the integer schema version it was written at, and an
// RFC 3339 generation timestamp.
package exchange

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/migrate"
)

// Envelope is the exchange payload.
type Envelope struct {
	Document    settings.Document `json:"document"`
	Version     int               `json:"version"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Encode serializes a document into the exchange format.
func Encode(doc settings.Document, version int, generatedAt time.Time) ([]byte, error) {
	env := Envelope{
		Document:    doc,
		Version:     version,
		GeneratedAt: generatedAt.UTC(),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Decode parses an exchange payload and migrates the contained document to
// the current schema. Payloads that are not a JSON object carrying a
// document object fail with settings.ErrMalformedInput before migration is
// attempted.
func Decode(blob []byte, resolver *migrate.Resolver) (settings.Document, error) {
	if len(blob) == 0 || !gjson.ValidBytes(blob) {
		return settings.Document{}, settings.ErrMalformedInput
	}
	root := gjson.ParseBytes(blob)
	if !root.IsObject() || !root.Get("document").IsObject() {
		return settings.Document{}, settings.ErrMalformedInput
	}
	return resolver.Resolve(blob)
}
