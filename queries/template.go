package queries

import (
	"fmt"
	"strings"
)

// Kind tells how a template body is used.
type Kind string

const (
	// KindQuery is a complete SELECT query.
	KindQuery Kind = "query"

	// KindPattern is a group graph pattern plugged into a wrapper query.
	KindPattern Kind = "pattern"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindQuery || k == KindPattern
}

// Module names of the built-in templates.
const (
	ModuleBelhisfirm = "belhisfirm"
	ModuleScob       = "scob"
	ModuleScobStocks = "scobstocks"
	ModulePortal     = "portal"
)

// Template is one revision of a named query template.
type Template struct {
	Name        string `yaml:"name" json:"name"`
	Module      string `yaml:"module" json:"module"`
	Revision    int    `yaml:"revision" json:"revision"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Body        string `yaml:"body" json:"body"`
}

// ID returns name@revision.
func (t Template) ID() string {
	return fmt.Sprintf("%s@%d", t.Name, t.Revision)
}

func (t Template) check() error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if t.Revision < 1 {
		return fmt.Errorf("%w: %s: revision must be >= 1", ErrInvalid, t.Name)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalid, t.Name, t.Kind)
	}
	if strings.ContainsAny(t.Name, "\r\n") || strings.ContainsAny(t.Module, "\r\n") {
		return fmt.Errorf("%w: %q: name and module must be single lines", ErrInvalid, t.Name)
	}
	if strings.Contains(t.Description, "\r") {
		return fmt.Errorf("%w: %s: description contains a carriage return", ErrInvalid, t.Name)
	}
	return nil
}
