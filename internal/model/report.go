package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FeatureSet maps feature names to the values a layer carries.
type FeatureSet map[string]Value

// Names returns the feature names in sorted order.
func (fs FeatureSet) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Layer is one entry of a report: a module and the features collected on it.
type Layer struct {
	// FQN is the fully-qualified module name, e.g. "block1.conv".
	FQN string `json:"fqn"`

	// Type is the module type name (e.g. "Conv2d") when the input carries it.
	Type string `json:"type,omitempty"`

	// Features holds the per-layer statistics.
	Features FeatureSet `json:"features"`
}

// Report is an ordered collection of layers.
// Layer order is the order of the input and is preserved by every
// operation, including JSON round trips.
//
// Design decision: We keep a slice plus an index instead of a map because
// Go maps are unordered and the row order of tables and the x axis of plots
// both follow the order in which the report was generated.
type Report struct {
	layers []*Layer
	index  map[string]int
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{index: make(map[string]int)}
}

// Add appends a layer. Adding an FQN twice is an error.
func (r *Report) Add(layer *Layer) error {
	if _, ok := r.index[layer.FQN]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLayer, layer.FQN)
	}
	if layer.Features == nil {
		layer.Features = make(FeatureSet)
	}
	r.index[layer.FQN] = len(r.layers)
	r.layers = append(r.layers, layer)
	return nil
}

// AddFeatures is a convenience wrapper around Add for building reports in code.
func (r *Report) AddFeatures(fqn string, features FeatureSet) error {
	return r.Add(&Layer{FQN: fqn, Features: features})
}

// Layers returns the layers in report order.
// The returned slice must not be modified.
func (r *Report) Layers() []*Layer {
	return r.layers
}

// Layer returns the layer with the given FQN.
func (r *Report) Layer(fqn string) (*Layer, bool) {
	i, ok := r.index[fqn]
	if !ok {
		return nil, false
	}
	return r.layers[i], true
}

// Len returns the number of layers.
func (r *Report) Len() int {
	return len(r.layers)
}

// FeatureCount returns the number of distinct feature names.
func (r *Report) FeatureCount() int {
	seen := make(map[string]struct{})
	for _, l := range r.layers {
		for name := range l.Features {
			seen[name] = struct{}{}
		}
	}
	return len(seen)
}

// FilterByPrefix returns the layers whose FQN starts with prefix, in order.
// The empty prefix matches every layer.
func (r *Report) FilterByPrefix(prefix string) []*Layer {
	if prefix == "" {
		return r.layers
	}
	var out []*Layer
	for _, l := range r.layers {
		if strings.HasPrefix(l.FQN, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// reportJSON is the canonical serialised form of a Report.
type reportJSON struct {
	Layers []*Layer `json:"layers"`
}

// MarshalJSON writes the canonical {"layers": [...]} form, which keeps order.
func (r *Report) MarshalJSON() ([]byte, error) {
	layers := r.layers
	if layers == nil {
		layers = []*Layer{}
	}
	return json.Marshal(reportJSON{Layers: layers})
}

// UnmarshalJSON accepts both input forms (see Parse).
func (r *Report) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
