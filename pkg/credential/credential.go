// Package credential encodes and decodes the text carried by a printed QR code.
//
// A credential encodes the JSON object {"uid":"...","event":"..."}. Readers
// also accept a bare uid, which is what keyboard-wedge scanners and manual
// entry usually produce.
package credential

import (
	"encoding/json"
	"strings"
)

// Payload is the content of a credential QR code.
type Payload struct {
	UID   string `json:"uid"`
	Event string `json:"event"`
}

// Encode returns the QR text for an attendee.
func Encode(uid, event string) (string, error) {
	b, err := json.Marshal(Payload{UID: uid, Event: event})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseUID extracts the uid from scanned text. Text that looks like a JSON
// object with a string uid yields that uid; anything else is returned trimmed.
// An empty result means there is nothing to validate.
func ParseUID(text string) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			if uid, ok := obj["uid"].(string); ok {
				return uid
			}
		}
	}
	return raw
}
