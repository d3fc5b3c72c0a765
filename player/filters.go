package player

import (
	"sort"
	"sync"
)

// Filter is a named ffmpeg audio-filter parameter string. Value is opaque to
// the player beyond being passed into the decode pipeline; an empty Value
// means "no filter".
type Filter struct {
	Name  string
	Value string
}

// builtinFilters seeds every registry. Values are ffmpeg -af chains; "clear"
// maps to the empty chain.
var builtinFilters = map[string]string{
	"3d":        "apulsator=hz=0.125",
	"bassboost": "bass=g=10",
	"echo":      "aecho=0.8:0.9:1000:0.3",
	"fadein":    "afade=t=in:ss=0:d=10",
	"flanger":   "flanger",
	"gate":      "agate",
	"haas":      "haas",
	"karaoke":   "stereotools=mlev=0.1",
	"nightcore": "aresample=48000,asetrate=48000*1.25",
	"reverse":   "areverse",
	"vaporwave": "aresample=48000,asetrate=48000*0.8",
	"mcompand":  "mcompand",
	"phaser":    "aphaser=in_gain=0.4",
	"tremolo":   "tremolo",
	"surround":  "surround",
	"earwax":    "earwax",
	"clear":     "",
}

// FilterRegistry maps filter names to ffmpeg parameter strings. Lookups are
// case-sensitive exact match. Built-ins are seeded at construction and may
// only be shadowed after an explicit Remove.
type FilterRegistry struct {
	mu      sync.RWMutex
	filters map[string]string
}

func NewFilterRegistry() *FilterRegistry {
	r := &FilterRegistry{filters: make(map[string]string, len(builtinFilters))}
	for name, value := range builtinFilters {
		r.filters[name] = value
	}
	return r
}

// Add registers a custom filter. Registering over an existing name, built-in
// or custom, is a conflict rather than an overwrite.
func (r *FilterRegistry) Add(name, value string) (Filter, error) {
	if name == "" {
		return Filter{}, newError(CodeInvalidArgument, "filters.add", "filter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[name]; ok {
		return Filter{}, newError(CodeFilterExists, "filters.add", "filter %q is already registered", name)
	}
	r.filters[name] = value
	return Filter{Name: name, Value: value}, nil
}

// Get resolves a filter by exact name.
func (r *FilterRegistry) Get(name string) (Filter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.filters[name]
	if !ok {
		return Filter{}, newError(CodeFilterNotFound, "filters.get", "unknown filter %q", name)
	}
	return Filter{Name: name, Value: value}, nil
}

// Remove unregisters a filter by name.
func (r *FilterRegistry) Remove(name string) (Filter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.filters[name]
	if !ok {
		return Filter{}, newError(CodeFilterNotFound, "filters.remove", "unknown filter %q", name)
	}
	delete(r.filters, name)
	return Filter{Name: name, Value: value}, nil
}

// List returns a name-sorted snapshot of the registry.
func (r *FilterRegistry) List() []Filter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Filter, 0, len(r.filters))
	for name, value := range r.filters {
		out = append(out, Filter{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
