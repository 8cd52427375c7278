package sites

import (
	"fmt"
	"sort"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
)

// Registry is the read-only table of site profiles. It is built once at
// startup and injected; there is no way to add or change a profile afterwards.
type Registry struct {
	order []string
	byID  map[string]Profile
}

// NewRegistry validates the profiles and indexes them by id.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	reg := &Registry{
		order: make([]string, 0, len(profiles)),
		byID:  make(map[string]Profile, len(profiles)),
	}
	for i := range profiles {
		p := sanitizeProfile(profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("site[%d]: %w", i, err)
		}
		if _, exists := reg.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate site id %q", p.ID)
		}
		reg.order = append(reg.order, p.ID)
		reg.byID[p.ID] = p.clone()
	}
	return reg, nil
}

// Default builds the registry from DefaultProfiles.
func Default() *Registry {
	reg, err := NewRegistry(DefaultProfiles()...)
	if err != nil {
		panic(fmt.Sprintf("built-in site profiles are invalid: %v", err))
	}
	return reg
}

// Resolve returns the profile registered under id (case-insensitive).
func (r *Registry) Resolve(id string) (Profile, error) {
	if r == nil {
		return Profile{}, fmt.Errorf("%w: registry is nil", domain.ErrUnknownSite)
	}
	p, ok := r.byID[normalizeID(id)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: no profile registered for %q", domain.ErrUnknownSite, id)
	}
	return p.clone(), nil
}

// IDs returns the registered site ids sorted alphabetically.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}

// All returns the profiles in registration order.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].clone())
	}
	return out
}

// Len reports how many profiles are registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
