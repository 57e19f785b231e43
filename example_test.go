package chunkwrap_test

import (
	"crypto/rand"
	"fmt"

	"github.com/codahale/chunkwrap"
)

func Example() {
	key := make([]byte, chunkwrap.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	// Encrypt the message under a fresh random nonce.
	ciphertext, err := chunkwrap.Seal(nil, []byte("hello world"), key)
	if err != nil {
		panic(err)
	}

	// Verify and decrypt the message.
	plaintext, err := chunkwrap.Open(nil, ciphertext, key)
	if err != nil {
		panic(err)
	}

	fmt.Printf("overhead = %d bytes\n", len(ciphertext)-len(plaintext))
	fmt.Printf("plaintext = %s\n", plaintext)

	// Output:
	// overhead = 56 bytes
	// plaintext = hello world
}

func ExampleNew() {
	// Build a scheme using KangarooTwelve instead of BLAKE2Xb. Ciphertexts are bound to the suite which
	// produced them.
	scheme, err := chunkwrap.New(chunkwrap.WithSuite(chunkwrap.KT128()), chunkwrap.WithWorkers(4))
	if err != nil {
		panic(err)
	}

	fmt.Println(scheme)

	// Output:
	// Scheme(KT128)
}

func ExampleScheme_Seal() {
	key := make([]byte, chunkwrap.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	// Process chunks with four goroutines. The ciphertext is identical to sequential encryption.
	scheme, err := chunkwrap.New(chunkwrap.WithWorkers(4))
	if err != nil {
		panic(err)
	}

	message := make([]byte, 1<<20)
	ciphertext, err := scheme.Seal(nil, message, key)
	if err != nil {
		panic(err)
	}

	plaintext, err := scheme.Open(nil, ciphertext, key)
	if err != nil {
		panic(err)
	}

	fmt.Printf("chunks = %d\n", (len(ciphertext)-chunkwrap.NonceSize)/chunkwrap.CiphertextChunkSize)
	fmt.Printf("recovered = %d bytes\n", len(plaintext))

	// Output:
	// chunks = 64
	// recovered = 1048576 bytes
}

func ExampleCiphertextSize() {
	// A message is always at least one chunk, so even an empty plaintext carries a nonce and a tag. Each
	// started chunk adds another tag.
	for _, n := range []int{0, 1, chunkwrap.ChunkSize, chunkwrap.ChunkSize + 1} {
		size, err := chunkwrap.CiphertextSize(n)
		if err != nil {
			panic(err)
		}
		fmt.Printf("CiphertextSize(%d) = %d\n", n, size)
	}

	// Output:
	// CiphertextSize(0) = 56
	// CiphertextSize(1) = 57
	// CiphertextSize(16384) = 16440
	// CiphertextSize(16385) = 16473
}
