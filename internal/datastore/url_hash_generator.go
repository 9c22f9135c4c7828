package datastore

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKeyLength is the number of hex characters kept from the URL digest.
const StorageKeyLength = 32

// URLHashGenerator handles URL hash generation
type URLHashGenerator struct {
	hashLength int
}

// NewURLHashGenerator creates a new URL hash generator
func NewURLHashGenerator(hashLength int) *URLHashGenerator {
	if hashLength <= 0 || hashLength > 64 {
		hashLength = StorageKeyLength
	}
	return &URLHashGenerator{
		hashLength: hashLength,
	}
}

// GenerateHash creates a unique hash for the URL
func (uhg *URLHashGenerator) GenerateHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:uhg.hashLength]
}

var defaultKeys = NewURLHashGenerator(StorageKeyLength)

// StorageKey derives the filesystem-safe key for a target URL.
// It depends on the URL only, so renaming a target keeps its history.
func StorageKey(url string) string {
	return defaultKeys.GenerateHash(url)
}
