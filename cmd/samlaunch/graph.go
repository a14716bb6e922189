package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/samlaunch-go/internal/cfn"
	"github.com/lex00/samlaunch-go/internal/graph"
)

// newGraphCmd creates the "graph" subcommand rendering a template's
// reference graph.
func newGraphCmd() *cobra.Command {
	var (
		format        string
		includeParams bool
		outputFile    string
	)

	cmd := &cobra.Command{
		Use:   "graph <template>",
		Short: "Render a template's resource reference graph",
		Long: `Graph renders the Ref/GetAtt reference graph of a SAM template in DOT or
Mermaid format.

Examples:
    samlaunch graph template.yaml
    samlaunch graph template.yaml --format mermaid
    samlaunch graph template.yaml --include-parameters -o graph.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], format, includeParams, outputFile)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&includeParams, "include-parameters", false, "Include parameter references")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGraph(templatePath, format string, includeParams bool, outputFile string) error {
	tmpl, err := cfn.Load(templatePath)
	if err != nil {
		return err
	}

	gen := &graph.Generator{
		Format:            graph.Format(format),
		IncludeParameters: includeParams,
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	return gen.Generate(tmpl, out)
}
