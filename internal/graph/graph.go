// Package graph renders DOT and Mermaid reference graphs of a loaded SAM
// template: resources as boxes, parameters as dashed ellipses, Ref/GetAtt
// edges between them.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/lex00/samlaunch-go/internal/cfn"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates reference graphs from a template model.
type Generator struct {
	// IncludeParameters includes parameter references in the graph.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format
}

// Generate writes the reference graph of tmpl to w.
func (g *Generator) Generate(tmpl *cfn.Template, w io.Writer) error {
	graph := g.buildGraph(tmpl)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(tmpl *cfn.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(tmpl, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(tmpl *cfn.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	for id, res := range tmpl.Resources {
		n := graph.Node(id)
		n.Label(id + "\\n[" + res.Type + "]")
	}

	if g.IncludeParameters {
		for name := range tmpl.Parameters {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for id, res := range tmpl.Resources {
		for _, edge := range referenceEdges(res.Properties) {
			_, isResource := tmpl.Resources[edge.target]
			_, isParam := tmpl.Parameters[edge.target]
			if !isResource && (!isParam || !g.IncludeParameters) {
				continue
			}
			e := graph.Edge(graph.Node(id), graph.Node(edge.target))
			if edge.getAtt {
				e.Attr("color", "blue")
			}
		}
	}

	return graph
}

type refEdge struct {
	target string
	getAtt bool
}

// referenceEdges walks a property tree collecting Ref and Fn::GetAtt targets.
func referenceEdges(v any) []refEdge {
	var edges []refEdge
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["Ref"].(string); ok && len(val) == 1 {
			return []refEdge{{target: ref}}
		}
		if att, ok := val["Fn::GetAtt"]; ok && len(val) == 1 {
			if target, ok := getAttTarget(att); ok {
				return []refEdge{{target: target, getAtt: true}}
			}
		}
		for _, child := range val {
			edges = append(edges, referenceEdges(child)...)
		}
	case []any:
		for _, child := range val {
			edges = append(edges, referenceEdges(child)...)
		}
	}
	return edges
}

// getAttTarget extracts the logical ID from any GetAtt form:
// "Name.Attr", ["Name", "Attr"], or the loader's []string pair.
func getAttTarget(v any) (string, bool) {
	switch att := v.(type) {
	case string:
		if i := strings.Index(att, "."); i > 0 {
			return att[:i], true
		}
	case []string:
		if len(att) > 0 {
			return att[0], true
		}
	case []any:
		if len(att) > 0 {
			if name, ok := att[0].(string); ok {
				return name, true
			}
		}
	}
	return "", false
}
