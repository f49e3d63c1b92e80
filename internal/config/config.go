package config

import (
	"sync"

	"github.com/specialistvlad/suitegrid/internal/faults"
)

// MaxInterpolationDepth bounds the length of a reference chain.
const MaxInterpolationDepth = 32

// Resolved is a fully interpolated snapshot: section -> option -> value.
type Resolved map[string]map[string]string

// Config is an ordered stack of layers with lazy interpolation.
type Config struct {
	layers []Layer
	// literal is set for configs rebuilt from a resolved snapshot; their
	// values are final and are never interpolated again.
	literal bool

	mu    sync.Mutex
	cache map[key]string
}

type key struct {
	section string
	option  string
}

func (k key) String() string { return k.section + ":" + k.option }

// New builds a config from layers ordered from lowest to highest precedence.
func New(layers ...Layer) *Config {
	cp := make([]Layer, len(layers))
	copy(cp, layers)
	return &Config{layers: cp, cache: make(map[key]string)}
}

// FromResolved rebuilds a read-only config from a snapshot produced by
// Resolve. Values are returned exactly as recorded.
func FromResolved(r Resolved) *Config {
	layer := NewLayer("checkpoint", "")
	for section, options := range r {
		if _, ok := layer.Values[section]; !ok {
			layer.Values[section] = make(map[string]string)
		}
		for option, value := range options {
			layer.Set(section, option, value)
		}
	}
	c := New(layer)
	c.literal = true
	return c
}

// With returns a new config with the given layers stacked on top.
func (c *Config) With(layers ...Layer) *Config {
	all := make([]Layer, 0, len(c.layers)+len(layers))
	all = append(all, c.layers...)
	all = append(all, layers...)
	next := New(all...)
	next.literal = c.literal
	return next
}

// Layers returns the layer stack, lowest precedence first.
func (c *Config) Layers() []Layer {
	out := make([]Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// raw returns the uninterpolated value of an option; the highest-precedence
// layer defining it wins.
func (c *Config) raw(section, option string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, layer := range c.layers {
		if v, ok := layer.Values[section][option]; ok {
			value, found = v, true
		}
	}
	return value, found
}

// Has reports whether any layer defines the option.
func (c *Config) Has(section, option string) bool {
	_, ok := c.raw(section, option)
	return ok
}

// Sections returns every section defined by any layer, sorted.
func (c *Config) Sections() []string {
	set := make(map[string]struct{})
	for _, layer := range c.layers {
		for section := range layer.Values {
			set[section] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Options returns every option of a section defined by any layer, sorted.
func (c *Config) Options(section string) []string {
	set := make(map[string]struct{})
	for _, layer := range c.layers {
		for option := range layer.Values[section] {
			set[option] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Get returns the fully interpolated value of an option.
func (c *Config) Get(section, option string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(key{section, option}, nil)
}

// Resolve interpolates every option of every section. The first failure is
// returned; a successful result is deterministic for a given layer stack.
func (c *Config) Resolve() (Resolved, error) {
	out := make(Resolved)
	for _, section := range c.Sections() {
		out[section] = make(map[string]string)
		for _, option := range c.Options(section) {
			v, err := c.Get(section, option)
			if err != nil {
				return nil, err
			}
			out[section][option] = v
		}
	}
	return out, nil
}

func missing(k key) error {
	return faults.Config(faults.ErrMissingOption, k.String(), "option is not defined in any layer")
}
