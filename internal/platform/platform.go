// Package platform maps internal platform codes stored in MTN headers to
// public model names and back.
package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDuplicatePlatform   = errors.New("duplicate platform")
)

// UnsupportedPlatformError lists the public names a caller may choose from.
type UnsupportedPlatformError struct {
	Name      string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q (supported: %s)", e.Name, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// Pair binds one internal code to one public name.
type Pair struct {
	Code string
	Name string
}

// Table is an immutable bijection between internal codes and public names.
type Table struct {
	toName map[string]string
	toCode map[string]string
	names  []string
}

// New builds a table and rejects any code or name that appears twice, since
// the reverse mapping would otherwise be ambiguous.
func New(pairs []Pair) (*Table, error) {
	t := &Table{
		toName: make(map[string]string, len(pairs)),
		toCode: make(map[string]string, len(pairs)),
		names:  make([]string, 0, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := t.toName[p.Code]; ok {
			return nil, fmt.Errorf("%w: internal code %q", ErrDuplicatePlatform, p.Code)
		}
		if _, ok := t.toCode[p.Name]; ok {
			return nil, fmt.Errorf("%w: public name %q", ErrDuplicatePlatform, p.Name)
		}
		t.toName[p.Code] = p.Name
		t.toCode[p.Name] = p.Code
		t.names = append(t.names, p.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

// DefaultPairs is the closed set of known platforms.
var DefaultPairs = []Pair{
	{Code: "DRX-700", Name: "ERS-110"},
	{Code: "DRX-910", Name: "ERS-210"},
	{Code: "DRX-900", Name: "ERS-220"},
	{Code: "DRX-801", Name: "ERS-310"},
	{Code: "DRX-1000", Name: "ERS-7"},
}

// Default returns the table of known platforms.
func Default() *Table {
	t, err := New(DefaultPairs)
	if err != nil {
		panic(err)
	}
	return t
}

// PublicName maps an internal code to its public name. Unknown input is
// returned unchanged, which callers cannot tell apart from an identity mapping.
func (t *Table) PublicName(code string) string {
	if name, ok := t.toName[code]; ok {
		return name
	}
	return code
}

// InternalCode maps a public name to its internal code, passing unknown
// input through unchanged.
func (t *Table) InternalCode(name string) string {
	if code, ok := t.toCode[name]; ok {
		return code
	}
	return name
}

// IsPublic reports whether name is a known public name.
func (t *Table) IsPublic(name string) bool {
	_, ok := t.toCode[name]
	return ok
}

// PublicNames returns the known public names, sorted.
func (t *Table) PublicNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Validate returns *UnsupportedPlatformError unless name is a known public name.
func (t *Table) Validate(name string) error {
	if t.IsPublic(name) {
		return nil
	}
	return &UnsupportedPlatformError{Name: name, Supported: t.PublicNames()}
}
