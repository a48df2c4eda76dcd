package pipeline

// IDAllocator hands out sequential identifiers starting at 1.
// It is not safe for concurrent use; give each run its own allocators.
type IDAllocator struct {
	last int
}

// Next returns the next identifier.
func (a *IDAllocator) Next() int {
	a.last++
	return a.last
}

// Issued returns how many identifiers have been handed out.
func (a *IDAllocator) Issued() int { return a.last }

// Allocators holds one counter per generated entity type.
type Allocators struct {
	Catalogs IDAllocator
	Recipes  IDAllocator
	Events   IDAllocator
	Specs    IDAllocator
	Mixes    IDAllocator
}

// NewAllocators returns a fresh set of counters for a single run.
func NewAllocators() *Allocators { return &Allocators{} }
