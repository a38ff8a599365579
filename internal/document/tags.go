package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// intrinsicTag mapeia a tag da forma curta para a chave da forma longa.
func intrinsicTag(tag string) (string, bool) {
	if !strings.HasPrefix(tag, "!") || strings.HasPrefix(tag, "!!") {
		return "", false
	}
	name := strings.TrimPrefix(tag, "!")
	switch name {
	case "Ref", "Condition":
		return name, true
	case "Sub", "GetAtt", "Join", "Select", "Split", "If", "Equals", "Not", "And", "Or",
		"FindInMap", "ImportValue", "Base64", "GetAZs", "Cidr", "Length", "ToJsonString":
		return "Fn::" + name, true
	default:
		return "", false
	}
}

func convert(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		return convert(n.Alias)
	}

	key, tagged := intrinsicTag(n.Tag)
	if !tagged && strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return nil, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.Tag)
	}

	var (
		v   any
		err error
	)
	switch n.Kind {
	case yaml.ScalarNode:
		v, err = scalar(n, tagged)
	case yaml.SequenceNode:
		v, err = sequence(n)
	case yaml.MappingNode:
		v, err = mappingNode(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
	if err != nil || !tagged {
		return v, err
	}

	// !GetAtt Resource.Attribute equivale a [Resource, Attribute].
	if s, ok := v.(string); ok && key == "Fn::GetAtt" {
		if i := strings.Index(s, "."); i > 0 {
			v = []any{s[:i], s[i+1:]}
		}
	}
	return map[string]any{key: v}, nil
}

func scalar(n *yaml.Node, stripTag bool) (any, error) {
	c := *n
	if stripTag {
		c.Tag = ""
	}
	var v any
	if err := c.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func sequence(n *yaml.Node) (any, error) {
	out := make([]any, 0, len(n.Content))
	for _, item := range n.Content {
		v, err := convert(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func mappingNode(n *yaml.Node) (any, error) {
	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
		}
		if _, dup := out[k.Value]; dup {
			return nil, fmt.Errorf("line %d: %w %q", k.Line, ErrDuplicateKey, k.Value)
		}
		val, err := convert(v)
		if err != nil {
			return nil, err
		}
		out[k.Value] = val
	}
	return out, nil
}
