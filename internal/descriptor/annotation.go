package descriptor

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"entity-generator/internal/model"
)

// Annotation is a model.Annotation that reads both the compact "entity(id)"
// form and the object form, and always writes the compact form.
type Annotation model.Annotation

type annotationObject struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Arg       string `yaml:"arg,omitempty" json:"arg,omitempty"`
}

func (a Annotation) String() string {
	return model.Annotation(a).String()
}

// MarshalYAML implements yaml.Marshaler.
func (a Annotation) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Annotation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := model.ParseAnnotation(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}

		*a = Annotation(parsed)

		return nil

	case yaml.MappingNode:
		var obj annotationObject
		if err := node.Decode(&obj); err != nil {
			return err
		}

		return a.fromObject(obj)

	default:
		return fmt.Errorf("line %d: annotation must be a string or a mapping", node.Line)
	}
}

// MarshalJSON implements json.Marshaler.
func (a Annotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		parsed, err := model.ParseAnnotation(s)
		if err != nil {
			return err
		}

		*a = Annotation(parsed)

		return nil
	}

	var obj annotationObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("annotation must be a string or an object: %w", err)
	}

	return a.fromObject(obj)
}

func (a *Annotation) fromObject(obj annotationObject) error {
	if obj.Namespace == "" {
		return fmt.Errorf("annotation object has no namespace")
	}

	*a = Annotation{Namespace: obj.Namespace, Arg: obj.Arg}

	return nil
}

func toModel(in []Annotation) []model.Annotation {
	if len(in) == 0 {
		return nil
	}

	out := make([]model.Annotation, len(in))
	for i, a := range in {
		out[i] = model.Annotation(a)
	}

	return out
}

func fromModel(in []model.Annotation) []Annotation {
	if len(in) == 0 {
		return nil
	}

	out := make([]Annotation, len(in))
	for i, a := range in {
		out[i] = Annotation(a)
	}

	return out
}
