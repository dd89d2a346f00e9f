package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores tree nodes of one kind. Nodes are addressed by 1-based
// index so that the zero ID of every node kind means "none"; nodes are
// never removed.
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate stores value and returns its index.
func (a *Arena[T]) Allocate(value T) uint32 {
	n, err := safecast.Conv[uint32](len(a.data) + 1)
	if err != nil {
		panic(fmt.Errorf("ast arena overflow: %w", err))
	}
	a.data = append(a.data, value)
	return n
}

// Get returns the node at index, nil for 0 or an index never allocated.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || uint64(index) > uint64(len(a.data)) {
		return nil
	}
	return &a.data[index-1]
}

// Len is the number of allocated nodes.
func (a *Arena[T]) Len() int { return len(a.data) }
