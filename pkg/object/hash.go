package object

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// HashSize is the length of a Hash in hex characters.
const HashSize = 2 * sha1.Size

// HashBytes computes the SHA-1 of data and returns it as a lowercase
// hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the frame "type len\0content", matching
// git's object hashing.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(frameHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// Frame returns the stored byte form of an object: "type len\0payload".
func Frame(objType ObjectType, data []byte) []byte {
	header := frameHeader(objType, len(data))
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	return append(out, data...)
}

func frameHeader(objType ObjectType, n int) []byte {
	out := make([]byte, 0, len(objType)+12)
	out = append(out, objType...)
	out = append(out, ' ')
	out = strconv.AppendInt(out, int64(n), 10)
	return append(out, 0)
}

// IsHash reports whether s is a full 40-character hex digest in either case.
func IsHash(s string) bool {
	return len(s) == HashSize && isHex(s)
}

// NormalizeHash lowercases and trims s.
func NormalizeHash(s string) Hash {
	return Hash(strings.ToLower(strings.TrimSpace(s)))
}

// hashFromRaw hex-encodes a raw 20-byte digest.
func hashFromRaw(raw []byte) Hash {
	return Hash(hex.EncodeToString(raw))
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
