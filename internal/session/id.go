package session

//
// id.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"math/rand/v2"
)

const (
	// IDLength is number of characters in session id.
	IDLength   = 32
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// idGenerator produce session identifiers from alphanumeric alphabet.
// It is NOT cryptographically secure; ids are unique and statistically
// uniform but may be predictable. Not safe for concurrent use; Manager
// call it only under its mutex.
type idGenerator struct {
	rnd *rand.Rand
}

func newIDGenerator() *idGenerator {
	return &idGenerator{
		rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec
	}
}

func (g *idGenerator) next() string {
	buf := make([]byte, IDLength)
	for i := range buf {
		buf[i] = idAlphabet[g.rnd.IntN(len(idAlphabet))]
	}

	return string(buf)
}

// IsValidID check if id looks like session id (length and alphabet).
func IsValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}

	for _, c := range []byte(id) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}

	return true
}
