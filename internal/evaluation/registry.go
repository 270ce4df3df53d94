package evaluation

import "sort"

// Registry is an explicit, ordered set of evaluators composed at process start.
type Registry struct {
	evaluators []Evaluator
	names      map[string]struct{}
}

// NewRegistry builds a registry from evaluators in declaration order.
func NewRegistry(evaluators ...Evaluator) (*Registry, error) {
	r := &Registry{names: make(map[string]struct{}, len(evaluators))}
	for _, e := range evaluators {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on invalid input. Intended for tests
// and static composition.
func MustNewRegistry(evaluators ...Evaluator) *Registry {
	r, err := NewRegistry(evaluators...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends an evaluator. Names must be unique.
func (r *Registry) Register(e Evaluator) error {
	if e == nil {
		return &RegistryError{Message: "evaluator is nil"}
	}
	name := e.Name()
	if name == "" {
		return &RegistryError{Message: "evaluator name is empty"}
	}
	if _, exists := r.names[name]; exists {
		return &RegistryError{Name: name, Message: "already registered"}
	}
	r.names[name] = struct{}{}
	r.evaluators = append(r.evaluators, e)
	return nil
}

// All returns the evaluators in declaration order.
func (r *Registry) All() []Evaluator {
	return append([]Evaluator(nil), r.evaluators...)
}

// ByPriority returns the evaluators sorted by ascending priority. Ties keep
// declaration order.
func (r *Registry) ByPriority() []Evaluator {
	sorted := r.All()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return sorted
}

// Names returns evaluator names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.evaluators))
	for _, e := range r.evaluators {
		names = append(names, e.Name())
	}
	return names
}

// Len returns the number of registered evaluators.
func (r *Registry) Len() int {
	return len(r.evaluators)
}
