package game

import (
	"math/rand"
)

// CodeAlphabet is the unambiguous join-code alphabet: uppercase letters
// with I and O removed.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeLength is the length of a join code.
const CodeLength = 4

// DefaultPoolSize is how many codes are pre-generated at startup.
const DefaultPoolSize = 10000

// CodePool hands out short human-typable join codes without replacement.
// Codes are pre-generated and shuffled at construction; a code returns to
// the pool when its game terminates. The registry owns the pool and calls
// it under its own lock, so the pool itself carries no synchronization.
type CodePool struct {
	free []string
}

// NewCodePool pre-generates size distinct codes.
func NewCodePool(size int) *CodePool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	seen := make(map[string]struct{}, size)
	free := make([]string, 0, size)
	buf := make([]byte, CodeLength)
	for len(free) < size {
		for i := range buf {
			buf[i] = CodeAlphabet[rand.Intn(len(CodeAlphabet))]
		}
		code := string(buf)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		free = append(free, code)
	}
	return &CodePool{free: free}
}

// Pop draws the next code from the pool.
func (p *CodePool) Pop() (string, error) {
	if len(p.free) == 0 {
		return "", ErrCodesDrained
	}
	code := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return code, nil
}

// Reclaim returns a code to the pool once its game has terminated.
func (p *CodePool) Reclaim(code string) {
	if code == "" {
		return
	}
	p.free = append(p.free, code)
}

// Remaining reports how many codes are still available.
func (p *CodePool) Remaining() int {
	return len(p.free)
}
