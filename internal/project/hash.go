package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Sum хеширует строку целиком.
func Sum(s string) Digest {
	return Digest(sha256.Sum256([]byte(s)))
}

// Combine строит составной хеш: H( head || part1 || part2 ... ).
// Порядок частей значим: ключ кэша = Combine(validator, text).
func Combine(head Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(head[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
