// Package chunkwrap implements chunked authenticated encryption built on a single keyed hash.
//
// A message is split into 16 KiB chunks. For each chunk, the keyed hash expands the long-term key and a
// 33-byte chunk state (the message nonce, the chunk's index, and a final-chunk flag) into a MAC key and an
// encryption key. The MAC key authenticates the chunk's plaintext, producing a 32-byte tag; the encryption
// key and the tag together produce the chunk's keystream. Deriving the keystream from the tag binds
// confidentiality to integrity: modifying a chunk's ciphertext or tag changes the recomputed tag, which is
// rejected in constant time before any plaintext is released.
//
// The final chunk's keys are derived with the final-chunk flag set, so no proper prefix of a ciphertext is
// itself a valid ciphertext. Together with the indexed chunk states, this detects truncation, reordering,
// and splicing of chunks across messages.
//
// Ciphertexts consist of a 24-byte nonce followed by each encrypted chunk and its tag, with no framing or
// version bytes. Encryption is randomized by a fresh nonce per message; a message is always at least one
// chunk, so even an empty plaintext produces a tagged ciphertext.
package chunkwrap

import (
	"errors"
)

const (
	// KeySize is the size of a long-term key in bytes.
	KeySize = 32

	// NonceSize is the size of a per-message nonce in bytes.
	NonceSize = 24

	// TagSize is the size of a per-chunk authentication tag in bytes.
	TagSize = 32

	// ChunkSize is the size of a plaintext chunk in bytes. Every chunk but the last is exactly this long;
	// the last is whatever remains, including zero bytes for an empty message.
	ChunkSize = 16 * 1024

	// CiphertextChunkSize is the size of an encrypted chunk and its tag in bytes.
	CiphertextChunkSize = ChunkSize + TagSize

	// Overhead is the difference between a plaintext's length and the minimum ciphertext length: the
	// nonce plus a single tag. Each additional chunk adds another TagSize bytes.
	Overhead = NonceSize + TagSize
)

var (
	// ErrInvalidLength is returned when a buffer's length is inconsistent with the sizes produced by
	// encryption.
	ErrInvalidLength = errors.New("chunkwrap: invalid length")

	// ErrInvalidKeyLength is returned when a key is not exactly KeySize bytes long.
	ErrInvalidKeyLength = errors.New("chunkwrap: invalid key length")

	// ErrAuthentication is returned when a ciphertext has been modified, truncated, or reordered. It
	// deliberately carries no information about where verification failed.
	ErrAuthentication = errors.New("chunkwrap: message authentication failed")
)

// CiphertextSize returns the exact length of the ciphertext for a plaintext of the given length. It
// returns ErrInvalidLength if plaintextLen is negative.
func CiphertextSize(plaintextLen int) (int, error) {
	if plaintextLen < 0 {
		return 0, ErrInvalidLength
	}
	return NonceSize + plaintextLen + chunkCount(plaintextLen)*TagSize, nil
}

// PlaintextSize returns the exact length of the plaintext recovered from a ciphertext of the given
// length. It returns ErrInvalidLength if ciphertextLen is shorter than the nonce and a single tag.
//
// PlaintextSize is a pure length calculation. Lengths which pass it but which no encryption could have
// produced, such as a trailing chunk shorter than its own tag, are rejected by Decrypt.
func PlaintextSize(ciphertextLen int) (int, error) {
	if ciphertextLen < Overhead {
		return 0, ErrInvalidLength
	}
	body := ciphertextLen - NonceSize
	chunks := (body + CiphertextChunkSize - 1) / CiphertextChunkSize
	return body - chunks*TagSize, nil
}

// chunkCount returns the number of chunks in a plaintext of the given length. A message always has at
// least one chunk, even when the plaintext is empty.
func chunkCount(plaintextLen int) int {
	return max(1, (plaintextLen+ChunkSize-1)/ChunkSize)
}

// std is the Scheme behind the package-level operations: a keyed BLAKE2Xb hash, nonces from
// crypto/rand, and sequential chunk processing.
var std = defaultScheme()

// Encrypt encrypts plaintext with key, writing the nonce, encrypted chunks, and tags to ciphertext. The
// ciphertext buffer must be exactly CiphertextSize(len(plaintext)) bytes and must not overlap plaintext.
func Encrypt(ciphertext, plaintext, key []byte) error {
	return std.Encrypt(ciphertext, plaintext, key)
}

// Decrypt verifies and decrypts ciphertext with key, writing the recovered message to plaintext. The
// plaintext buffer must be exactly PlaintextSize(len(ciphertext)) bytes and must not overlap ciphertext.
// If the ciphertext is not authentic, Decrypt wipes the entire plaintext buffer and returns
// ErrAuthentication.
func Decrypt(plaintext, ciphertext, key []byte) error {
	return std.Decrypt(plaintext, ciphertext, key)
}

// Seal encrypts plaintext with key, appends the ciphertext to dst, and returns the resulting slice.
func Seal(dst, plaintext, key []byte) ([]byte, error) {
	return std.Seal(dst, plaintext, key)
}

// Open verifies and decrypts ciphertext with key, appends the plaintext to dst, and returns the
// resulting slice. If the ciphertext is not authentic, Open wipes the appended region and returns
// ErrAuthentication.
func Open(dst, ciphertext, key []byte) ([]byte, error) {
	return std.Open(dst, ciphertext, key)
}
