package chunkwrap

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/codahale/chunkwrap/internal/mem"
)

// A Scheme binds the construction to a keyed hash suite, a nonce source, and a chunk scheduler. Schemes
// hold no per-message state; all methods are safe for concurrent use.
//
// The zero value is not usable. Construct Schemes with New.
type Scheme struct {
	suite   Suite
	rand    io.Reader
	workers int
}

// An Option configures a Scheme.
type Option func(*Scheme) error

// WithSuite replaces the default BLAKE2Xb keyed hash. Ciphertexts are bound to the suite which produced
// them and cannot be decrypted with any other.
func WithSuite(suite Suite) Option {
	return func(s *Scheme) error {
		if suite == nil {
			return errors.New("chunkwrap: no suite given")
		}
		s.suite = suite
		return nil
	}
}

// WithRand replaces the nonce source, which defaults to crypto/rand's Reader. This is intended for tests
// and interoperability harnesses; reusing a nonce under the same key forfeits all confidentiality.
func WithRand(r io.Reader) Option {
	return func(s *Scheme) error {
		if r == nil {
			return errors.New("chunkwrap: no nonce source given")
		}
		s.rand = r
		return nil
	}
}

// WithWorkers sets the number of goroutines used to process chunks, which defaults to 1 (sequential).
// Chunks derive their keys independently and occupy disjoint regions of the output, so the worker count
// changes neither the ciphertext nor the scheme's guarantees, only the wall-clock time of long messages.
func WithWorkers(n int) Option {
	return func(s *Scheme) error {
		if n < 1 {
			return errors.New("chunkwrap: workers must be at least 1")
		}
		s.workers = n
		return nil
	}
}

// New returns a Scheme with the given options applied. With no options, it matches the package-level
// operations: a keyed BLAKE2Xb hash, nonces from crypto/rand, and sequential chunk processing.
func New(opts ...Option) (*Scheme, error) {
	s := defaultScheme()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func defaultScheme() *Scheme {
	return &Scheme{suite: BLAKE2Xb(), rand: rand.Reader, workers: 1}
}

// String returns a description of the scheme's configuration.
func (s *Scheme) String() string {
	return fmt.Sprintf("Scheme(%s)", s.suite.Name())
}

// Encrypt encrypts plaintext with key, writing the nonce, encrypted chunks, and tags to ciphertext.
//
// The ciphertext buffer must be exactly CiphertextSize(len(plaintext)) bytes and must not overlap
// plaintext. Encrypt returns ErrInvalidKeyLength if the key is not KeySize bytes and ErrInvalidLength if
// the ciphertext buffer has any other size.
func (s *Scheme) Encrypt(ciphertext, plaintext, key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKeyLength
	}
	if size, _ := CiphertextSize(len(plaintext)); len(ciphertext) != size {
		return ErrInvalidLength
	}

	nonce := ciphertext[:NonceSize]
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return fmt.Errorf("chunkwrap: reading nonce: %w", err)
	}

	body, chunks := ciphertext[NonceSize:], chunkCount(len(plaintext))
	if s.workers > 1 {
		s.encryptParallel(body, plaintext, key, nonce, chunks)
	} else {
		s.encryptSequential(body, plaintext, key, nonce, chunks)
	}
	return nil
}

// Decrypt verifies and decrypts ciphertext with key, writing the recovered message to plaintext.
//
// The plaintext buffer must be exactly PlaintextSize(len(ciphertext)) bytes and must not overlap
// ciphertext. Decrypt returns ErrInvalidKeyLength if the key is not KeySize bytes and ErrInvalidLength if
// either buffer has a length no encryption could have produced. If the ciphertext has been modified,
// truncated, or reordered, Decrypt wipes the entire plaintext buffer and returns ErrAuthentication
// without revealing which chunk failed.
func (s *Scheme) Decrypt(plaintext, ciphertext, key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKeyLength
	}
	size, err := PlaintextSize(len(ciphertext))
	if err != nil {
		return err
	}
	// A genuine ciphertext length round-trips through the size calculations. Anything else, like a
	// trailing chunk shorter than its own tag, was cut mid-chunk and is rejected before any key material
	// is touched.
	if roundTrip, _ := CiphertextSize(size); roundTrip != len(ciphertext) {
		return ErrInvalidLength
	}
	if len(plaintext) != size {
		return ErrInvalidLength
	}

	nonce, body, chunks := ciphertext[:NonceSize], ciphertext[NonceSize:], chunkCount(size)
	if s.workers > 1 {
		err = s.decryptParallel(plaintext, body, key, nonce, chunks)
	} else {
		err = s.decryptSequential(plaintext, body, key, nonce, chunks)
	}
	if err != nil {
		mem.Wipe(plaintext)
		return err
	}
	return nil
}

// Seal encrypts plaintext with key, appends the ciphertext to dst, and returns the resulting slice.
func (s *Scheme) Seal(dst, plaintext, key []byte) ([]byte, error) {
	size, _ := CiphertextSize(len(plaintext))
	ret, out := mem.SliceForAppend(dst, size)
	if err := s.Encrypt(out, plaintext, key); err != nil {
		return nil, err
	}
	return ret, nil
}

// Open verifies and decrypts ciphertext with key, appends the plaintext to dst, and returns the
// resulting slice. If the ciphertext is not authentic, Open wipes the appended region and returns
// ErrAuthentication.
func (s *Scheme) Open(dst, ciphertext, key []byte) ([]byte, error) {
	size, err := PlaintextSize(len(ciphertext))
	if err != nil {
		return nil, err
	}
	ret, out := mem.SliceForAppend(dst, size)
	if err := s.Decrypt(out, ciphertext, key); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Scheme) encryptSequential(body, plaintext, key, nonce []byte, chunks int) {
	var st state
	st.init(nonce)
	for i := range chunks {
		st.set(uint64(i), i == chunks-1)
		pt := plaintextChunk(plaintext, i)
		s.sealChunk(wireChunk(body, i, len(pt)), pt, key, &st)
	}
}

func (s *Scheme) decryptSequential(plaintext, body, key, nonce []byte, chunks int) error {
	var st state
	st.init(nonce)
	for i := range chunks {
		st.set(uint64(i), i == chunks-1)
		pt := plaintextChunk(plaintext, i)
		if err := s.openChunk(pt, wireChunk(body, i, len(pt)), key, &st); err != nil {
			return err
		}
	}
	return nil
}

// sealChunk encrypts and tags a single chunk. ciphertext must be exactly len(plaintext)+TagSize bytes;
// the tag is written after the encrypted chunk. The derived chunk keys are wiped on return.
func (s *Scheme) sealChunk(ciphertext, plaintext, key []byte, st *state) {
	var secret [2 * KeySize]byte
	defer mem.Wipe(secret[:])
	s.suite.Fill(secret[:], key, st[:])
	macKey, encKey := secret[:KeySize], secret[KeySize:]

	ct, tag := ciphertext[:len(plaintext)], ciphertext[len(plaintext):]
	s.suite.Fill(tag, macKey, plaintext)

	// The keystream is staged in the output buffer, then XORed with the plaintext in place.
	s.suite.Fill(ct, encKey, tag)
	subtle.XORBytes(ct, ct, plaintext)
}

// openChunk decrypts and verifies a single chunk, writing the recovered chunk to plaintext. ciphertext
// must be exactly len(plaintext)+TagSize bytes. The derived chunk keys and the recomputed tag are wiped
// on return; on a tag mismatch the caller is responsible for wiping the whole output buffer.
func (s *Scheme) openChunk(plaintext, ciphertext, key []byte, st *state) error {
	var secret [2 * KeySize]byte
	defer mem.Wipe(secret[:])
	s.suite.Fill(secret[:], key, st[:])
	macKey, encKey := secret[:KeySize], secret[KeySize:]

	ct, tag := ciphertext[:len(plaintext)], ciphertext[len(plaintext):]
	s.suite.Fill(plaintext, encKey, tag)
	subtle.XORBytes(plaintext, plaintext, ct)

	var computed [TagSize]byte
	defer mem.Wipe(computed[:])
	s.suite.Fill(computed[:], macKey, plaintext)
	if subtle.ConstantTimeCompare(computed[:], tag) != 1 {
		return ErrAuthentication
	}
	return nil
}

const stateSize = NonceSize + 8 + 1

// state is the 33-byte input which, hashed under the long-term key, yields a chunk's MAC and encryption
// keys: the message nonce, the chunk's index as a little-endian 64-bit integer, and a byte which is 1
// for the final chunk and 0 otherwise.
type state [stateSize]byte

func (st *state) init(nonce []byte) {
	copy(st[:NonceSize], nonce)
	clear(st[NonceSize:])
}

// set prepares the state for deriving the keys of the chunk at the given index.
func (st *state) set(index uint64, final bool) {
	binary.LittleEndian.PutUint64(st[NonceSize:NonceSize+8], index)
	if final {
		st[stateSize-1] = 1
	} else {
		st[stateSize-1] = 0
	}
}

// plaintextChunk returns the i-th chunk of plaintext. All chunks are ChunkSize bytes except the last,
// which holds the remainder.
func plaintextChunk(plaintext []byte, i int) []byte {
	off := i * ChunkSize
	return plaintext[off:min(off+ChunkSize, len(plaintext))]
}

// wireChunk returns the i-th encrypted chunk and its tag from the body of a ciphertext.
func wireChunk(body []byte, i, chunkLen int) []byte {
	off := i * CiphertextChunkSize
	return body[off : off+chunkLen+TagSize]
}
