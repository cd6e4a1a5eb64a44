package visualizer

import (
	"maps"
	"slices"
)

// UniqueModuleFQNs returns the set of layer FQNs in the report.
func (v *Visualizer) UniqueModuleFQNs() map[string]struct{} {
	set := make(map[string]struct{}, v.report.Len())
	for _, l := range v.report.Layers() {
		set[l.FQN] = struct{}{}
	}
	return set
}

// UniqueFeatureNames returns the set of feature names across all layers.
// With plottableOnly, a name is included only where its value is a tensor.
func (v *Visualizer) UniqueFeatureNames(plottableOnly bool) map[string]struct{} {
	set := make(map[string]struct{})
	for _, l := range v.report.Layers() {
		for name, value := range l.Features {
			if plottableOnly && !value.IsPlottable() {
				continue
			}
			set[name] = struct{}{}
		}
	}
	return set
}

// SortedModuleFQNs returns UniqueModuleFQNs in lexical order.
func (v *Visualizer) SortedModuleFQNs() []string {
	return slices.Sorted(maps.Keys(v.UniqueModuleFQNs()))
}

// SortedFeatureNames returns UniqueFeatureNames in lexical order.
func (v *Visualizer) SortedFeatureNames(plottableOnly bool) []string {
	return slices.Sorted(maps.Keys(v.UniqueFeatureNames(plottableOnly)))
}
