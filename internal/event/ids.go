package event

import "strconv"

// Generator allocates monotonically increasing event ids of the form
// "e<N>". Ids are unique within one causal history; after ingesting an
// externally-sourced log, call SyncPast so subsequently generated ids
// never collide with ids already present.
type Generator struct {
	next uint64
}

// NewGenerator returns a generator whose first id is "e1".
func NewGenerator() *Generator {
	return &Generator{next: 1}
}

// Next returns the next id and advances the generator.
func (g *Generator) Next() string {
	id := "e" + strconv.FormatUint(g.next, 10)
	g.next++
	return id
}

// SyncPast advances the generator past the highest numeric suffix
// observed in events. Ids without a numeric suffix are ignored.
func (g *Generator) SyncPast(events []Event) {
	for _, e := range events {
		if n, ok := numericSuffix(e.ID); ok && n >= g.next {
			g.next = n + 1
		}
	}
}

// Clone returns an independent copy, used when forking an engine.
func (g *Generator) Clone() *Generator {
	return &Generator{next: g.next}
}

// numericSuffix extracts the trailing decimal digits of an id.
func numericSuffix(id string) (uint64, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[i:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
