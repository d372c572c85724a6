package redirect

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/store"
)

// Alphabet is the 62-character code alphabet.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// DefaultCodeLength is the generated code length when none is configured.
	DefaultCodeLength = 6
	// DefaultAttempts bounds collision retries before giving up.
	DefaultAttempts = 5
)

var (
	// ErrCodeTaken reports that a caller-supplied code already exists.
	ErrCodeTaken = errors.New("code already exists")
	// ErrCodeExhausted reports that generation collided on every attempt.
	ErrCodeExhausted = errors.New("could not allocate a unique code")
)

// CodeAllocator assigns short codes at create time: a caller-supplied code is
// verified for global uniqueness, otherwise a random one is generated with
// bounded collision retries.
type CodeAllocator struct {
	Redirects store.Adapter[model.Redirect]
	// Length and Attempts fall back to the defaults when zero.
	Length   int
	Attempts int
	// Rand defaults to crypto/rand.
	Rand io.Reader
}

// Allocate returns preferred when it is free, or a fresh generated code.
func (a *CodeAllocator) Allocate(ctx context.Context, preferred string) (string, error) {
	if preferred != "" {
		taken, err := a.taken(ctx, preferred)
		if err != nil {
			return "", err
		}
		if taken {
			return "", fmt.Errorf("%w: %s", ErrCodeTaken, preferred)
		}
		return preferred, nil
	}

	attempts := a.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 0; i < attempts; i++ {
		code, err := a.generate()
		if err != nil {
			return "", err
		}
		taken, err := a.taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func (a *CodeAllocator) taken(ctx context.Context, code string) (bool, error) {
	n, err := a.Redirects.Count(ctx, store.Where{store.Eq("code", code)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// generate samples one random byte per position, reduced modulo the alphabet
// size. 256 is not a multiple of 62, so characters early in the alphabet are
// very slightly favored; acceptable for short-code allocation.
func (a *CodeAllocator) generate() (string, error) {
	length := a.Length
	if length <= 0 {
		length = DefaultCodeLength
	}
	src := a.Rand
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}
