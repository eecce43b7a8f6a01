package core

import "github.com/google/uuid"

// NewID returns the identity tag attached to every engine-owned object.
// The object registry and the device key on it.
func NewID() uuid.UUID {
	return uuid.New()
}
