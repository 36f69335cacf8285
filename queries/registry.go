package queries

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360studio/belhisfirm/sparql"
	"github.com/c360studio/belhisfirm/vocabulary/bhf"
)

// Registry stores templates by name, each with one or more revisions. It is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string][]Template // sorted by revision
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string][]Template)}
}

var defaultRegistry = NewRegistry()

// Default returns the registry holding the built-in templates.
func Default() *Registry {
	return defaultRegistry
}

// Get returns the body of the latest revision of a built-in template.
func Get(name string) (string, error) {
	t, err := defaultRegistry.Get(name)
	if err != nil {
		return "", err
	}
	return t.Body, nil
}

// MustGet is like Get but panics on unknown names.
func MustGet(name string) string {
	body, err := Get(name)
	if err != nil {
		panic(err)
	}
	return body
}

// mustRegister adds a built-in template to the default registry.
func mustRegister(t Template) {
	if err := defaultRegistry.Register(t); err != nil {
		panic(err)
	}
}

// Register adds a template. A zero revision is stored as revision 1.
func (r *Registry) Register(t Template) error {
	if t.Revision == 0 {
		t.Revision = 1
	}
	if err := t.check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.templates[t.Name] {
		if existing.Revision == t.Revision {
			return fmt.Errorf("%w: %s", ErrDuplicate, t.ID())
		}
	}
	r.insert(t)
	return nil
}

// Override adds a template, replacing any template with the same name and
// revision.
func (r *Registry) Override(t Template) error {
	if t.Revision == 0 {
		t.Revision = 1
	}
	if err := t.check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	revs := r.templates[t.Name]
	for i := range revs {
		if revs[i].Revision == t.Revision {
			revs[i] = t
			return nil
		}
	}
	r.insert(t)
	return nil
}

// insert must be called with the lock held.
func (r *Registry) insert(t Template) {
	revs := append(r.templates[t.Name], t)
	sort.Slice(revs, func(i, j int) bool { return revs[i].Revision < revs[j].Revision })
	r.templates[t.Name] = revs
}

// Get returns the latest revision of the named template.
func (r *Registry) Get(name string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	revs := r.templates[name]
	if len(revs) == 0 {
		return Template{}, &NotFoundError{Name: name}
	}
	return revs[len(revs)-1], nil
}

// GetRevision returns a specific revision of the named template.
func (r *Registry) GetRevision(name string, revision int) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.templates[name] {
		if t.Revision == revision {
			return t, nil
		}
	}
	return Template{}, &NotFoundError{Name: name, Revision: revision}
}

// Names returns all template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Revisions returns the revision numbers of a template in ascending order.
func (r *Registry) Revisions(name string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	revs := r.templates[name]
	out := make([]int, 0, len(revs))
	for _, t := range revs {
		out = append(out, t.Revision)
	}
	return out
}

// All returns every revision of every template ordered by module, name and
// revision.
func (r *Registry) All() []Template {
	r.mu.RLock()
	var out []Template
	for _, revs := range r.templates {
		out = append(out, revs...)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Revision < b.Revision
	})
	return out
}

// Len returns the number of stored template revisions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, revs := range r.templates {
		n += len(revs)
	}
	return n
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, revs := range r.templates {
		c.templates[name] = append([]Template(nil), revs...)
	}
	return c
}

// Load overrides the registry with the given templates, typically from LoadDir.
func (r *Registry) Load(templates []Template) error {
	for _, t := range templates {
		if err := r.Override(t); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the latest revision of a template ready to send: placeholders
// substituted and PREFIX declarations prepended. Pattern templates are wrapped
// in instancePageQuery, so bindings must then include <ID>.
func (r *Registry) Render(name string, b sparql.Bindings) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return r.RenderTemplate(t, b)
}

// RenderTemplate is Render for an already resolved template.
func (r *Registry) RenderTemplate(t Template, b sparql.Bindings) (string, error) {
	body := t.Body
	if t.Kind == KindPattern {
		wrapper, err := r.Get(InstancePageQuery)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", t.ID(), err)
		}
		wb := make(sparql.Bindings, len(b)+1)
		for k, v := range b {
			wb[k] = v
		}
		wb[sparql.PlaceholderProperties] = t.Body
		b = wb
		body = wrapper.Body
	}
	out, err := sparql.Substitute(body, b)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", t.ID(), err)
	}
	return bhf.PrefixHeader() + out, nil
}
