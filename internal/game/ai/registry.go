package ai

import "fmt"

// Registry indexes planners by domain ID and by the classes they drive.
//
// Invariant: each domain ID and each class is registered at most once.
type Registry struct {
	planners map[string]*Planner
	classes  map[string]*Planner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		planners: make(map[string]*Planner),
		classes:  make(map[string]*Planner),
	}
}

// Register creates a Planner for domain.
//
// Precondition: domain and caller must not be nil.
// Postcondition: returns an error, leaving r unchanged, on a domain or class collision.
func (r *Registry) Register(domain *Domain, caller ScriptCaller, scope string) error {
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai: domain %q already registered", domain.ID)
	}
	for _, c := range domain.Classes {
		if other, exists := r.classes[c]; exists {
			return fmt.Errorf("ai: class %q claimed by domains %q and %q", c, other.domain.ID, domain.ID)
		}
	}
	p := NewPlanner(domain, caller, scope)
	r.planners[domain.ID] = p
	for _, c := range domain.Classes {
		r.classes[c] = p
	}
	return nil
}

// PlannerFor returns the Planner of domainID.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	p, ok := r.planners[domainID]
	return p, ok
}

// ForClass returns the planner driving class, falling back to DefaultDomain.
func (r *Registry) ForClass(class string) (*Planner, bool) {
	if p, ok := r.classes[class]; ok {
		return p, true
	}
	return r.PlannerFor(DefaultDomain)
}
