package synth

import "fmt"

// IDAllocator hands out transaction identifiers. One allocator is owned by a
// run and shared by the base stream and every injector, so identifiers are
// strictly increasing in generation order and never collide.
type IDAllocator struct {
	next int64
}

// NewIDAllocator returns an allocator whose first identifier is start.
func NewIDAllocator(start int64) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns a fresh transaction identifier.
func (a *IDAllocator) Next() string {
	id := a.next
	a.next++
	return FormatTransactionID(id)
}

// FormatTransactionID renders the numeric part of a transaction identifier.
func FormatTransactionID(n int64) string {
	return fmt.Sprintf("T%09d", n)
}
