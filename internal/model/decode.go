package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a report from JSON or YAML.
//
// Two layouts are accepted:
//
//	# nested mapping, as produced by the report generator
//	block1.conv:
//	  per_channel_min: [0.1, -0.2]
//	  dynamic_static_change: 0.4
//
//	# canonical form, as written by Report.MarshalJSON
//	layers:
//	  - fqn: block1.conv
//	    type: Conv2d
//	    features: {per_channel_min: [0.1, -0.2]}
//
// The strings "NaN", "+Inf" and "-Inf" decode as numbers, which is how
// Value.MarshalJSON writes non-finite values.
//
// Design decision: We decode through yaml.Node rather than into a Go map
// because the node tree keeps mapping keys in document order. JSON is valid
// YAML, so one decoder serves both formats.
func Parse(data []byte) (*Report, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, ErrEmptyInput
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, ErrInvalidReport
	}

	if layers := canonicalLayers(root); layers != nil {
		return parseCanonical(layers)
	}
	return parseNested(root)
}

// Load reads and decodes a report from r.
func Load(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and decodes a report file.
func LoadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return Parse(data)
}

// resolve follows alias nodes to their target.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// canonicalLayers returns the "layers" sequence of a canonical document,
// or nil when root is a nested mapping. A layer in the nested form is always
// a mapping, so a sequence under "layers" is unambiguous.
func canonicalLayers(root *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		value := resolve(root.Content[i+1])
		if key.Value == "layers" && value.Kind == yaml.SequenceNode {
			return value
		}
	}
	return nil
}

// parseNested decodes the {fqn: {feature: value}} layout.
func parseNested(root *yaml.Node) (*Report, error) {
	report := NewReport()
	for i := 0; i+1 < len(root.Content); i += 2 {
		fqn := root.Content[i].Value
		features, err := parseFeatures(fqn, root.Content[i+1])
		if err != nil {
			return nil, err
		}
		if err := report.Add(&Layer{FQN: fqn, Features: features}); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// parseCanonical decodes the {layers: [{fqn, type, features}]} layout.
func parseCanonical(layers *yaml.Node) (*Report, error) {
	report := NewReport()
	for idx, item := range layers.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: layers[%d] is not a mapping", ErrInvalidLayer, idx)
		}

		layer := &Layer{}
		var featuresNode *yaml.Node
		for i := 0; i+1 < len(item.Content); i += 2 {
			value := resolve(item.Content[i+1])
			switch item.Content[i].Value {
			case "fqn":
				layer.FQN = value.Value
			case "type":
				layer.Type = value.Value
			case "features":
				featuresNode = value
			}
		}
		if layer.FQN == "" {
			return nil, fmt.Errorf("%w: layers[%d] has no fqn", ErrInvalidLayer, idx)
		}

		if featuresNode != nil && !isNull(featuresNode) {
			features, err := parseFeatures(layer.FQN, featuresNode)
			if err != nil {
				return nil, err
			}
			layer.Features = features
		}

		if err := report.Add(layer); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// parseFeatures decodes the feature mapping of one layer.
func parseFeatures(fqn string, n *yaml.Node) (FeatureSet, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLayer, fqn)
	}

	features := make(FeatureSet, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		value, err := decodeValue(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("layer %s, feature %s: %w", fqn, name, err)
		}
		features[name] = value
	}
	return features, nil
}

// decodeValue turns a node into a typed Value.
func decodeValue(n *yaml.Node) (Value, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		if shape, data, ok := numericShape(n); ok {
			return TensorValue(&Tensor{Shape: shape, Data: data}), nil
		}
	case yaml.MappingNode:
		if t, ok, err := explicitTensor(n); ok || err != nil {
			if err != nil {
				return Value{}, err
			}
			return TensorValue(t), nil
		}
	}

	var generic any
	if err := n.Decode(&generic); err != nil {
		return Value{}, err
	}
	return ObjectValue(generic), nil
}

// decodeScalar maps YAML scalar tags to value kinds.
func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NullValue(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case "!!str":
		if f, ok := parseNonFinite(n.Value); ok {
			return NumberValue(f), nil
		}
		return TextValue(n.Value), nil
	default:
		return TextValue(n.Value), nil
	}
}

// numericShape reports whether n is a regular nested sequence of numbers and
// returns its shape and row-major data.
func numericShape(n *yaml.Node) ([]int, []float64, bool) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		tag := n.ShortTag()
		if tag == "!!str" {
			f, ok := parseNonFinite(n.Value)
			if !ok {
				return nil, nil, false
			}
			return []int{}, []float64{f}, true
		}
		if tag != "!!int" && tag != "!!float" {
			return nil, nil, false
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, nil, false
		}
		return []int{}, []float64{f}, true

	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return []int{0}, []float64{}, true
		}
		var inner []int
		var data []float64
		for i, child := range n.Content {
			shape, values, ok := numericShape(child)
			if !ok {
				return nil, nil, false
			}
			if i == 0 {
				inner = shape
			} else if !equalShape(inner, shape) {
				return nil, nil, false
			}
			data = append(data, values...)
		}
		return append([]int{len(n.Content)}, inner...), data, true
	}
	return nil, nil, false
}

// explicitTensor decodes {shape: [...], data: [...]}. ok is false when the
// mapping does not have exactly those two keys.
func explicitTensor(n *yaml.Node) (*Tensor, bool, error) {
	if len(n.Content) != 4 {
		return nil, false, nil
	}

	var shapeNode, dataNode *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "shape":
			shapeNode = n.Content[i+1]
		case "data":
			dataNode = n.Content[i+1]
		}
	}
	if shapeNode == nil || dataNode == nil {
		return nil, false, nil
	}

	var shape []int
	if err := shapeNode.Decode(&shape); err != nil {
		return nil, true, fmt.Errorf("%w: shape: %v", ErrInvalidTensor, err)
	}
	_, data, ok := numericShape(dataNode)
	if !ok {
		return nil, true, fmt.Errorf("%w: data is not numeric", ErrInvalidTensor)
	}
	if shape == nil {
		shape = []int{}
	}

	t, err := NewTensor(shape, data)
	return t, true, err
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
