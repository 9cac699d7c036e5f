package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for operations,
// conflict records and audit entries.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string. V7 identifiers sort by creation time,
// which keeps conflict and audit listings in detection order. Falls back
// to a random UUID if the v7 source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
