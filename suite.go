package chunkwrap

import (
	"github.com/codahale/kt128"
	"golang.org/x/crypto/blake2b"
)

// A Suite is the keyed hash the construction is built on. It must behave as a pseudorandom function of
// (key, in) with extensible output: fixed-length outputs serve as a key derivation function and a MAC,
// and chunk-length outputs serve as keystream.
//
// Fill may be called concurrently; implementations must use an isolated hash instance per call.
type Suite interface {
	// Fill writes len(out) bytes of the keyed hash of in under key to out. Implementations may bind the
	// output length into the computation, so callers must request the same length on both sides of a
	// round trip.
	Fill(out, key, in []byte)

	// Name returns a short identifier for the suite.
	Name() string
}

var (
	_ Suite = blake2xb{}
	_ Suite = kt128Suite{}
)

// BLAKE2Xb returns the default Suite, the BLAKE2Xb extensible-output function in keyed mode. The
// underlying hash rejects keys longer than 32 bytes, in which case Fill panics.
func BLAKE2Xb() Suite {
	return blake2xb{}
}

type blake2xb struct{}

func (blake2xb) Fill(out, key, in []byte) {
	if len(out) == 0 {
		return
	}
	xof, err := blake2b.NewXOF(uint32(len(out)), key)
	if err != nil {
		panic("chunkwrap: " + err.Error())
	}
	_, _ = xof.Write(in)
	_, _ = xof.Read(out)
}

func (blake2xb) Name() string {
	return "BLAKE2Xb"
}

// KT128 returns a Suite built on KangarooTwelve, keyed via its customization string. Unlike BLAKE2Xb,
// its output stream does not depend on the requested length, which is safe here because each key is used
// for a single role and a single output length.
func KT128() Suite {
	return kt128Suite{}
}

type kt128Suite struct{}

func (kt128Suite) Fill(out, key, in []byte) {
	if len(out) == 0 {
		return
	}
	h := kt128.NewCustom(key)
	_, _ = h.Write(in)
	_, _ = h.Read(out)
}

func (kt128Suite) Name() string {
	return "KT128"
}
