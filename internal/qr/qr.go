// Package qr derives reservation check-in payloads and renders them as
// scannable images.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const payloadPrefix = "reservation:"

// Payload derives the opaque QR payload for a reservation. The same id
// always yields the same payload, so regeneration after a partial create
// is safe.
func Payload(id uuid.UUID) string {
	return base64.URLEncoding.EncodeToString([]byte(payloadPrefix + id.String()))
}

// ReservationID recovers the reservation id from a scanned payload.
func ReservationID(payload string) (uuid.UUID, error) {
	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid qr payload: %w", err)
	}
	raw, ok := strings.CutPrefix(string(decoded), payloadPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid qr payload prefix")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid qr payload id: %w", err)
	}
	return id, nil
}

// PNG renders the payload as a PNG image of the given pixel size, for
// inline embedding in confirmation emails.
func PNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr image: %w", err)
	}
	return png, nil
}
