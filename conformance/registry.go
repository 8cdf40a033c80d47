package conformance

// Pair claims that two independently declared types share one compiled
// layout: Binding names the foreign-function mirror declaration, Native the
// original library's declaration, treated as ground truth.
//
// Group is a reporting label only. It carries no semantics; it exists so
// related pairs (all the decoder structs, all the encoder structs) stay
// together in output.
type Pair struct {
	Group   string `yaml:"group,omitempty" json:"group,omitempty"`
	Binding string `yaml:"binding" json:"binding"`
	Native  string `yaml:"native" json:"native"`
}

// Registry is an ordered, append-only collection of mirror pairs. Order is
// insertion order and matters only for deterministic reporting.
//
// A registry is built once at startup and never mutated during a run.
type Registry struct {
	pairs []Pair
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends an ungrouped pair and returns the registry for chaining.
func (r *Registry) Add(binding, native string) *Registry {
	return r.AddPair(Pair{Binding: binding, Native: native})
}

// AddGroup appends a pair under a group label and returns the registry for
// chaining.
func (r *Registry) AddGroup(group, binding, native string) *Registry {
	return r.AddPair(Pair{Group: group, Binding: binding, Native: native})
}

// AddPair appends a pair verbatim and returns the registry for chaining.
func (r *Registry) AddPair(p Pair) *Registry {
	r.pairs = append(r.pairs, p)
	return r
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	return len(r.pairs)
}

// Pairs returns the registered pairs in insertion order. The slice is a copy;
// callers cannot reach back into the registry through it.
func (r *Registry) Pairs() []Pair {
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}
