package mapping

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"bridge-generator/internal/common"
)

// StringOrArray is a type that can be unmarshaled from either a string or an array of strings.
// This allows YAML fields to accept both "uuid" and ["int4", "integer"].
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil
	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// ContainsFold reports whether any element equals v, ignoring case.
func (s StringOrArray) ContainsFold(v string) bool {
	return slices.ContainsFunc(s, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), v)
	})
}
