// Package cfn holds the in-memory model of a SAM/CloudFormation template:
// resources, parameters, Globals, and !Ref resolution against parameter
// defaults.
//
// Templates are parsed by the external cloudformation-schema-go loader; this
// package only shapes the result. The Globals section, which that loader does
// not surface, is recovered with a second yaml pass over the same file.
package cfn

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	schema "github.com/lex00/cloudformation-schema-go/template"
	"gopkg.in/yaml.v3"
)

// Template is a loaded SAM/CloudFormation template.
type Template struct {
	// Path is the absolute path the template was loaded from. Empty for
	// synthetic in-memory templates.
	Path       string
	Parameters map[string]Parameter
	Resources  map[string]Resource
	Globals    Globals
}

// Parameter is a template parameter. Only the declared default participates
// in resolution; stack-time values are never available here.
type Parameter struct {
	Type    string
	Default any
}

// Resource is a single resource: its CloudFormation type and raw properties.
type Resource struct {
	LogicalID  string
	Type       string
	Properties map[string]any
	Metadata   map[string]any
}

// Globals carry per-resource-type default properties, merged beneath
// explicit resource properties.
type Globals struct {
	Function map[string]any
}

// Load parses the template at path into a Template. Malformed input fails
// with *TemplateParseError.
func Load(path string) (*Template, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &TemplateParseError{Path: path, Err: err}
	}

	parsed, err := schema.ParseTemplate(abs)
	if err != nil {
		return nil, &TemplateParseError{Path: abs, Err: err}
	}

	tmpl := &Template{
		Path:       abs,
		Parameters: make(map[string]Parameter, len(parsed.Parameters)),
		Resources:  make(map[string]Resource, len(parsed.Resources)),
	}

	for id, param := range parsed.Parameters {
		tmpl.Parameters[id] = Parameter{
			Type:    param.Type,
			Default: param.Default,
		}
	}

	for id, res := range parsed.Resources {
		props := make(map[string]any, len(res.Properties))
		for name, prop := range res.Properties {
			props[name] = normalizeValue(prop.Value)
		}
		tmpl.Resources[id] = Resource{
			LogicalID:  id,
			Type:       res.ResourceType,
			Properties: props,
			Metadata:   res.Metadata,
		}
	}

	globals, err := loadGlobals(abs)
	if err != nil {
		return nil, err
	}
	tmpl.Globals = globals

	return tmpl, nil
}

// normalizeValue rewrites the loader's parsed intrinsics
// (*template.Intrinsic) into their long-form map equivalents, recursively:
// !Ref X becomes {"Ref": "X"}, !GetAtt A.B becomes {"Fn::GetAtt": "A.B"}.
// Everything downstream (resolution, the reference graph) consumes the map
// form only.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case *schema.Intrinsic:
		return map[string]any{intrinsicKey(val.Type): normalizeValue(val.Args)}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalizeValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeValue(child)
		}
		return out
	default:
		return v
	}
}

// intrinsicKey maps an intrinsic type back to its long-form template key.
func intrinsicKey(t schema.IntrinsicType) string {
	switch t {
	case schema.IntrinsicRef:
		return "Ref"
	case schema.IntrinsicCondition:
		return "Condition"
	case schema.IntrinsicGetAtt:
		return "Fn::GetAtt"
	case schema.IntrinsicSub:
		return "Fn::Sub"
	case schema.IntrinsicJoin:
		return "Fn::Join"
	case schema.IntrinsicSelect:
		return "Fn::Select"
	case schema.IntrinsicGetAZs:
		return "Fn::GetAZs"
	case schema.IntrinsicIf:
		return "Fn::If"
	case schema.IntrinsicEquals:
		return "Fn::Equals"
	case schema.IntrinsicAnd:
		return "Fn::And"
	case schema.IntrinsicOr:
		return "Fn::Or"
	case schema.IntrinsicNot:
		return "Fn::Not"
	case schema.IntrinsicFindInMap:
		return "Fn::FindInMap"
	case schema.IntrinsicBase64:
		return "Fn::Base64"
	case schema.IntrinsicCidr:
		return "Fn::Cidr"
	case schema.IntrinsicImportValue:
		return "Fn::ImportValue"
	case schema.IntrinsicSplit:
		return "Fn::Split"
	case schema.IntrinsicTransform:
		return "Fn::Transform"
	default:
		return fmt.Sprintf("Fn::%v", t)
	}
}

// loadGlobals re-reads the template and extracts the Globals.Function
// section, normalizing CloudFormation short-form tags (!Ref x) into their
// long-form map equivalents.
func loadGlobals(path string) (Globals, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Globals{}, &TemplateParseError{Path: path, Err: err}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return Globals{}, &TemplateParseError{Path: path, Err: err}
	}
	if len(root.Content) == 0 {
		return Globals{}, nil
	}

	doc := root.Content[0]
	globalsNode := mappingValue(doc, "Globals")
	if globalsNode == nil {
		return Globals{}, nil
	}
	fnNode := mappingValue(globalsNode, "Function")
	if fnNode == nil {
		return Globals{}, nil
	}

	fn, ok := nodeValue(fnNode).(map[string]any)
	if !ok {
		return Globals{}, &TemplateParseError{Path: path, Err: fmt.Errorf("Globals.Function is not a mapping")}
	}
	return Globals{Function: fn}, nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// nodeValue converts a yaml node to a plain Go value, turning short-form
// intrinsic tags into their long-form maps: !Ref X -> {"Ref": "X"},
// !GetAtt A.B -> {"Fn::GetAtt": "A.B"}.
func nodeValue(n *yaml.Node) any {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!Ref":
			return map[string]any{"Ref": n.Value}
		case "!!int":
			if i, err := strconv.Atoi(n.Value); err == nil {
				return i
			}
			return n.Value
		case "!!bool":
			return n.Value == "true"
		case "!!null":
			return nil
		default:
			if len(n.Tag) > 1 && n.Tag[0] == '!' && n.Tag[1] != '!' {
				return map[string]any{"Fn::" + n.Tag[1:]: n.Value}
			}
			return n.Value
		}
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			m[n.Content[i].Value] = nodeValue(n.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			s = append(s, nodeValue(c))
		}
		return s
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	default:
		return nil
	}
}

// FindResource looks up a resource by logical ID.
func (t *Template) FindResource(logicalID string) (Resource, error) {
	res, ok := t.Resources[logicalID]
	if !ok {
		return Resource{}, &ResourceNotFoundError{LogicalID: logicalID, Path: t.Path}
	}
	return res, nil
}

// Property returns the effective value of a resource property. Explicit
// resource properties win; properties absent on the resource are inherited
// from Globals.Function.
func (t *Template) Property(r Resource, name string) (any, bool) {
	if v, ok := r.Properties[name]; ok {
		return v, true
	}
	if v, ok := t.Globals.Function[name]; ok {
		return v, true
	}
	return nil, false
}

// StringProperty returns the effective property value when it is a literal
// string.
func (t *Template) StringProperty(r Resource, name string) (string, bool) {
	v, ok := t.Property(r, name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ResolveValue resolves a property value that is either a literal string or
// a {"Ref": name} intrinsic. Refs resolve against parameter overrides first,
// then the parameter's declared default. A ref with neither is unresolved
// and fails; it is never silently guessed.
func (t *Template) ResolveValue(v any, overrides map[string]string) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case map[string]any:
		ref, ok := val["Ref"].(string)
		if !ok || len(val) != 1 {
			return "", fmt.Errorf("unsupported intrinsic %v", val)
		}
		if o, ok := overrides[ref]; ok {
			return o, nil
		}
		param, ok := t.Parameters[ref]
		if !ok {
			return "", &UnresolvedParameterError{Name: ref, Reason: "parameter is not declared"}
		}
		if param.Default == nil {
			return "", &UnresolvedParameterError{Name: ref, Reason: "parameter has no default"}
		}
		return Stringify(param.Default), nil
	default:
		return "", fmt.Errorf("value %v is neither a literal nor a Ref", v)
	}
}

// ResolveHandler resolves the effective Handler of a resource: a literal is
// returned verbatim, a !Ref is resolved through ResolveValue.
func (t *Template) ResolveHandler(r Resource, overrides map[string]string) (string, error) {
	v, ok := t.Property(r, "Handler")
	if !ok {
		return "", fmt.Errorf("resource %s has no Handler property", r.LogicalID)
	}
	handler, err := t.ResolveValue(v, overrides)
	if err != nil {
		return "", fmt.Errorf("resolving Handler of %s: %w", r.LogicalID, err)
	}
	return handler, nil
}

// EnvironmentVariables returns the effective Environment.Variables map for a
// resource, with Globals merged beneath the resource's own variables.
func (t *Template) EnvironmentVariables(r Resource) map[string]string {
	merged := make(map[string]string)
	collect := func(src any) {
		env, ok := src.(map[string]any)
		if !ok {
			return
		}
		vars, ok := env["Variables"].(map[string]any)
		if !ok {
			return
		}
		for k, v := range vars {
			merged[k] = Stringify(v)
		}
	}

	if v, ok := t.Globals.Function["Environment"]; ok {
		collect(v)
	}
	if v, ok := r.Properties["Environment"]; ok {
		collect(v)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// IsImage reports whether a resource is an image-based function.
func (t *Template) IsImage(r Resource) bool {
	if s, ok := t.StringProperty(r, "PackageType"); ok && s == "Image" {
		return true
	}
	_, ok := t.Property(r, "ImageUri")
	return ok
}

// CodeLocation returns the resource's CodeUri (or ImageUri) when it is a
// literal string.
func (t *Template) CodeLocation(r Resource) (string, bool) {
	if s, ok := t.StringProperty(r, "CodeUri"); ok {
		return s, true
	}
	if s, ok := t.StringProperty(r, "ImageUri"); ok {
		return s, true
	}
	return "", false
}

// IntProperty returns the effective property value as an int.
func (t *Template) IntProperty(r Resource, name string) (int, bool) {
	v, ok := t.Property(r, name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// Stringify renders a scalar template value as a string.
func Stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
