// Package target reads the description of the machine being built for.
//
// All inputs arrive as named environment-style lookups so that callers (and
// tests) can substitute the process environment with an explicit value set.
package target

import "os"

// Env resolves a named configuration value.
type Env interface {
	// Lookup returns the value and whether the name is set at all.
	Lookup(name string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

// Lookup implements Env.
func (OSEnv) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv is a fixed set of values.
type MapEnv map[string]string

// Lookup implements Env.
func (m MapEnv) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Overlay consults Values first and falls back to Base.
type Overlay struct {
	Values map[string]string
	Base   Env
}

// Lookup implements Env.
func (o Overlay) Lookup(name string) (string, bool) {
	if v, ok := o.Values[name]; ok {
		return v, true
	}
	if o.Base == nil {
		return "", false
	}
	return o.Base.Lookup(name)
}

// Chain consults each Env in turn; the first one that sets a name wins.
type Chain []Env

// Lookup implements Env.
func (c Chain) Lookup(name string) (string, bool) {
	for _, env := range c {
		if env == nil {
			continue
		}
		if v, ok := env.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// Get returns the value of name or an empty string.
func Get(env Env, name string) string {
	if env == nil {
		return ""
	}
	v, _ := env.Lookup(name)
	return v
}
