package crypto

import "github.com/google/uuid"

// TokenGenerator produces the opaque unique token assigned to every user at
// registration.
type TokenGenerator interface {
	NewToken() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewToken() (string, error) {
	return uuid.NewString(), nil
}
