package event

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDelivery is the domain prefix for delivery identity hashing.
// Version suffix enables future algorithm migration.
const DomainDelivery = "ripple/delivery/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeliveryID computes the content-addressed ID for one journal delivery.
// The ID is stable across restarts given the same inputs, which makes
// journal writes idempotent: replaying the same delivery inserts nothing.
func DeliveryID(token, name string, listener, target EntityID, seq int64) (string, error) {
	obj := map[string]any{
		"token":    token,
		"event":    name,
		"listener": int64(listener),
		"target":   int64(target),
		"seq":      seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("DeliveryID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainDelivery, canonical), nil
}

// MustDeliveryID is DeliveryID that panics on error. Inputs are all
// strings and integers, so failure indicates a bug; intended for tests.
func MustDeliveryID(token, name string, listener, target EntityID, seq int64) string {
	id, err := DeliveryID(token, name, listener, target, seq)
	if err != nil {
		panic(err)
	}
	return id
}
