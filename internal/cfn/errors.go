package cfn

import "fmt"

// TemplateParseError is a malformed or unreadable template. Fatal, surfaced
// verbatim.
type TemplateParseError struct {
	Path string
	Err  error
}

func (e *TemplateParseError) Error() string {
	return fmt.Sprintf("parsing template %s: %v", e.Path, e.Err)
}

func (e *TemplateParseError) Unwrap() error { return e.Err }

// ResourceNotFoundError is a lookup of a logical ID the template does not
// declare.
type ResourceNotFoundError struct {
	LogicalID string
	Path      string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found in template %s", e.LogicalID, e.Path)
}

// UnresolvedParameterError is a !Ref to a parameter with no default and no
// override. This is a known limitation of default-only resolution, not a
// silent fallback.
type UnresolvedParameterError struct {
	Name   string
	Reason string
}

func (e *UnresolvedParameterError) Error() string {
	return fmt.Sprintf("cannot resolve !Ref %s: %s", e.Name, e.Reason)
}
