package config

import "gopkg.in/yaml.v3"

// YAML adapters for the enumerated setting types. Settings files spell enum
// values with the same strings the device uses, so the Parse functions do
// the work.

func decodeEnum[T any](node *yaml.Node, parse func(string) (T, error), out *T) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *AutoMode) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseAutoMode, m)
}

// MarshalYAML implements yaml.Marshaler.
func (m AutoMode) MarshalYAML() (interface{}, error) { return m.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TriggerSelector) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseTriggerSelector, t)
}

// MarshalYAML implements yaml.Marshaler.
func (t TriggerSelector) MarshalYAML() (interface{}, error) { return t.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TriggerMode) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseTriggerMode, t)
}

// MarshalYAML implements yaml.Marshaler.
func (t TriggerMode) MarshalYAML() (interface{}, error) { return t.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TriggerSource) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseTriggerSource, t)
}

// MarshalYAML implements yaml.Marshaler.
func (t TriggerSource) MarshalYAML() (interface{}, error) { return t.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TriggerActivation) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseTriggerActivation, t)
}

// MarshalYAML implements yaml.Marshaler.
func (t TriggerActivation) MarshalYAML() (interface{}, error) { return t.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *IncompleteFramePolicy) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseIncompleteFramePolicy, p)
}

// MarshalYAML implements yaml.Marshaler.
func (p IncompleteFramePolicy) MarshalYAML() (interface{}, error) { return p.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *AllocationMode) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseAllocationMode, m)
}

// MarshalYAML implements yaml.Marshaler.
func (m AllocationMode) MarshalYAML() (interface{}, error) { return m.String(), nil }
