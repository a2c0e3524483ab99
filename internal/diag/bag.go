package diag

import "sync"

// Bag accumulates diagnostics in the order they were reported.
// It is safe for concurrent use.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends diagnostics.
func (b *Bag) Add(ds ...Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, ds...)
	b.mu.Unlock()
}

// HasErrors reports whether any diagnostic has Severity >= SevError.
func (b *Bag) HasErrors() bool {
	return b.any(SevError)
}

// HasWarnings reports whether any diagnostic has Severity >= SevWarning.
func (b *Bag) HasWarnings() bool {
	return b.any(SevWarning)
}

func (b *Bag) any(min Severity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= min {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Merge appends everything from other.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	b.Add(other.Items()...)
}
