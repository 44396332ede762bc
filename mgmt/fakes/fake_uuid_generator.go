package fakes

import (
	"fmt"
	"sync"
)

// SequenceUUIDGenerator hands out predictable, distinct message ids.
type SequenceUUIDGenerator struct {
	Prefix      string
	GenerateErr error

	count int
	lock  sync.Mutex
}

func (g *SequenceUUIDGenerator) Generate() (string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.GenerateErr != nil {
		return "", g.GenerateErr
	}

	g.count++

	prefix := g.Prefix
	if prefix == "" {
		prefix = "fake-uuid"
	}

	return fmt.Sprintf("%s-%d", prefix, g.count), nil
}
