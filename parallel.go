package chunkwrap

import (
	"golang.org/x/sync/errgroup"
)

// encryptParallel seals chunks with a bounded pool of goroutines. Each chunk derives its keys
// independently and writes to its own region of body, so scheduling order cannot affect the output.
func (s *Scheme) encryptParallel(body, plaintext, key, nonce []byte, chunks int) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range chunks {
		g.Go(func() error {
			var st state
			st.init(nonce)
			st.set(uint64(i), i == chunks-1)
			pt := plaintextChunk(plaintext, i)
			s.sealChunk(wireChunk(body, i, len(pt)), pt, key, &st)
			return nil
		})
	}
	_ = g.Wait()
}

// decryptParallel opens chunks with a bounded pool of goroutines. All workers are joined before any
// result is surfaced; on failure the first error is returned and the caller wipes the whole plaintext
// buffer, including chunks which verified.
func (s *Scheme) decryptParallel(plaintext, body, key, nonce []byte, chunks int) error {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range chunks {
		g.Go(func() error {
			var st state
			st.init(nonce)
			st.set(uint64(i), i == chunks-1)
			pt := plaintextChunk(plaintext, i)
			return s.openChunk(pt, wireChunk(body, i, len(pt)), key, &st)
		})
	}
	return g.Wait()
}
