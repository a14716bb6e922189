package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/samlaunch-go/internal/cfn"
	"github.com/lex00/samlaunch-go/internal/validation"
)

// validateResult is the JSON output from `samlaunch validate`.
type validateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// newValidateCmd creates the "validate" subcommand for pre-flight template
// checks.
func newValidateCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate <template>",
		Short: "Pre-flight lint a SAM template",
		Long: `Validate runs cfn-lint on a template and parses it into the resolution
model, reporting anything that would make a launch configuration fail.

Examples:
    samlaunch validate template.yaml
    samlaunch validate template.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runValidate(templatePath, format string) error {
	result, err := validateTemplate(templatePath)
	if err != nil {
		return err
	}
	return outputValidateResult(result, format)
}

// validateTemplate lints the template and parses it into the resolution
// model.
func validateTemplate(templatePath string) (validateResult, error) {
	result := validateResult{Success: true}

	lintResult, err := validation.RunCfnLint(templatePath)
	if err != nil {
		return result, fmt.Errorf("running cfn-lint: %w", err)
	}
	result.Errors = append(result.Errors, lintResult.Errors...)
	result.Warnings = append(result.Warnings, lintResult.Warnings...)

	// Parse into the resolution model even if lint complained, to get as
	// much feedback as possible.
	tmpl, err := cfn.Load(templatePath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Resources = len(tmpl.Resources)
		for id, res := range tmpl.Resources {
			if res.Type != "AWS::Serverless::Function" && res.Type != "AWS::Lambda::Function" {
				continue
			}
			if _, err := tmpl.ResolveHandler(res, nil); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", id, err))
			}
		}
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

func outputValidateResult(result validateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success && len(result.Warnings) == 0 {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			return nil
		}
		if result.Success {
			fmt.Printf("Validation passed with warnings: %d resources\n", result.Resources)
		} else {
			fmt.Println("Validation FAILED:")
		}
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
