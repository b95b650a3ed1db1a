package id

import "github.com/google/uuid"

// Generator creates opaque IDs, used to correlate one prediction cycle across logs.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Static always returns the same id; handy in tests.
type Static string

func (s Static) NewID() string {
	return string(s)
}
