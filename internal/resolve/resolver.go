// Package resolve merges the three sources of truth of a SAM debug
// configuration (the template, the user's launch request, and runtime-family
// defaults) into a normalized, validated config.
//
// Resolution is synchronous, deterministic, and never retried: a second
// attempt with the same inputs would fail identically.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/cfn"
	"github.com/lex00/samlaunch-go/internal/registry"
	"github.com/lex00/samlaunch-go/internal/runtimes"
)

// NormalizedConfig is the validated intermediate config the descriptor
// builders consume. CodeRoot is always absolute and exists on disk;
// HandlerName is always non-empty.
type NormalizedConfig struct {
	Name string
	Kind samlaunch.TargetKind

	CodeRoot    string
	HandlerName string
	Runtime     string
	Family      runtimes.Spec

	Architecture string
	MemoryMB     int
	TimeoutSec   int
	Environment  map[string]string
	Payload      samlaunch.Payload
	PathMappings []samlaunch.PathMapping

	PythonDebugger string
	NoDebug        bool

	Region      string
	Credentials samlaunch.Credentials

	// LogicalID names the invoked resource; for code targets it equals the
	// handler name of the synthetic resource.
	LogicalID string
	// TemplatePath is the on-disk template for template/api targets; empty
	// for code targets (the synthetic template is materialized later).
	TemplatePath string
	// Template is the backing model: loaded from disk, or synthetic.
	Template  *cfn.Template
	IsImage   bool
	Synthetic bool

	API *samlaunch.APIConfig

	// BuildDirOverride is the caller-supplied base build dir, if any.
	BuildDirOverride string
}

// Resolver resolves launch requests for one workspace session.
type Resolver struct {
	// Workspace is required for template and api targets.
	Workspace *samlaunch.WorkspaceFolder
	// Templates maps template paths to parsed models.
	Templates *registry.Registry
	// Credentials resolves the aws section's profile reference. When nil the
	// embedder handles credentials itself and the step is skipped.
	Credentials samlaunch.CredentialsProvider
	// FS checks and reads the filesystem. Defaults to the host filesystem.
	FS samlaunch.FS
}

func (r *Resolver) fs() samlaunch.FS {
	if r.FS == nil {
		return samlaunch.OSFS{}
	}
	return r.FS
}

// Resolve turns a launch request into a normalized config. Validation is
// fail-fast: the first violation wins, and static configuration errors are
// reported before any I/O.
func (r *Resolver) Resolve(ctx context.Context, req samlaunch.LaunchRequest) (*NormalizedConfig, error) {
	cfg := &NormalizedConfig{
		Name:             req.Name,
		Kind:             req.Target.Target,
		NoDebug:          req.NoDebug,
		Payload:          req.Lambda.Payload,
		PathMappings:     req.Lambda.PathMappings,
		PythonDebugger:   req.Lambda.PythonDebugger,
		Region:           req.Aws.Region,
		API:              req.API,
		BuildDirOverride: req.Sam.BuildDir,
	}

	var err error
	switch req.Target.Target {
	case samlaunch.TargetCode:
		err = r.resolveCode(req, cfg)
	case samlaunch.TargetTemplate, samlaunch.TargetAPI:
		err = r.resolveTemplate(req, cfg)
	default:
		return nil, &InvalidTargetTypeError{Target: string(req.Target.Target)}
	}
	if err != nil {
		return nil, err
	}

	if err := r.resolveCredentials(ctx, req, cfg); err != nil {
		return nil, err
	}

	slog.Debug("resolved launch config",
		"kind", cfg.Kind,
		"runtime", cfg.Runtime,
		"handler", cfg.HandlerName,
		"codeRoot", cfg.CodeRoot)

	return cfg, nil
}

// resolveCode handles code targets: code root from the project root, handler
// taken verbatim, and a synthetic single-resource template for the artifact
// writer.
func (r *Resolver) resolveCode(req samlaunch.LaunchRequest, cfg *NormalizedConfig) error {
	family, err := runtimes.FamilyFor(req.Lambda.Runtime)
	if err != nil {
		return err
	}
	cfg.Runtime = req.Lambda.Runtime
	cfg.Family = family

	if req.Request != samlaunch.RequestDirectInvoke {
		return &InvalidRequestTypeError{Request: req.Request}
	}
	if req.Target.LambdaHandler == "" {
		return fmt.Errorf("code target requires lambdaHandler")
	}
	cfg.HandlerName = req.Target.LambdaHandler
	cfg.LogicalID = req.Target.LambdaHandler

	// Absolute project roots pass through unchanged; relative ones resolve
	// against the workspace folder.
	root := req.Target.ProjectRoot
	if !filepath.IsAbs(root) {
		if r.Workspace != nil {
			root = filepath.Join(r.Workspace.Path, root)
		} else if root, err = filepath.Abs(root); err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
	}
	root = filepath.Clean(root)
	if !r.fs().Exists(root) {
		return fmt.Errorf("code root %s does not exist", root)
	}
	cfg.CodeRoot = root

	r.applyOverrides(req, cfg)
	cfg.Template = syntheticTemplate(cfg)
	cfg.Synthetic = true
	return nil
}

// resolveTemplate handles template and api targets: the template is loaded
// through the workspace registry, the resource located, and code root and
// handler resolved from it.
func (r *Resolver) resolveTemplate(req samlaunch.LaunchRequest, cfg *NormalizedConfig) error {
	if r.Workspace == nil {
		return &NoWorkspaceFolderError{Kind: req.Target.Target}
	}
	if req.Target.Target == samlaunch.TargetAPI && req.API == nil {
		return fmt.Errorf("api target requires an api section")
	}

	tmpl, err := r.Templates.Load(req.Target.TemplatePath)
	if err != nil {
		return err
	}
	res, err := tmpl.FindResource(req.Target.LogicalID)
	if err != nil {
		return err
	}

	cfg.Template = tmpl
	cfg.TemplatePath = tmpl.Path
	cfg.LogicalID = req.Target.LogicalID
	cfg.IsImage = tmpl.IsImage(res)

	// Merge order for the runtime: user override, then template, then fail.
	// The family default never applies here because the family itself is
	// derived from the runtime string.
	runtime := req.Lambda.Runtime
	if runtime == "" {
		if v, ok := tmpl.Property(res, "Runtime"); ok {
			runtime, err = tmpl.ResolveValue(v, req.Sam.Parameters)
			if err != nil {
				return fmt.Errorf("resolving Runtime of %s: %w", res.LogicalID, err)
			}
		}
	}
	family, err := runtimes.FamilyFor(runtime)
	if err != nil {
		return err
	}
	cfg.Runtime = runtime
	cfg.Family = family

	cfg.HandlerName, err = tmpl.ResolveHandler(res, req.Sam.Parameters)
	if err != nil {
		return err
	}

	// Code root: CodeUri/ImageUri relative to the template's directory.
	loc, ok := tmpl.CodeLocation(res)
	if !ok {
		return fmt.Errorf("resource %s has no CodeUri or ImageUri", res.LogicalID)
	}
	root := loc
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(tmpl.Path), root)
	}
	root = filepath.Clean(root)
	if !r.fs().Exists(root) {
		return fmt.Errorf("code root %s does not exist", root)
	}
	cfg.CodeRoot = root

	cfg.Environment = tmpl.EnvironmentVariables(res)
	if v, ok := tmpl.IntProperty(res, "MemorySize"); ok {
		cfg.MemoryMB = v
	}
	if v, ok := tmpl.IntProperty(res, "Timeout"); ok {
		cfg.TimeoutSec = v
	}
	if v, ok := tmpl.Property(res, "Architectures"); ok {
		if archs, ok := v.([]any); ok && len(archs) > 0 {
			cfg.Architecture = cfn.Stringify(archs[0])
		}
	}

	r.applyOverrides(req, cfg)
	return nil
}

// applyOverrides layers explicit user overrides on top of whatever the
// template contributed, and fills remaining gaps with defaults.
func (r *Resolver) applyOverrides(req samlaunch.LaunchRequest, cfg *NormalizedConfig) {
	if req.Lambda.MemoryMB != 0 {
		cfg.MemoryMB = req.Lambda.MemoryMB
	}
	if req.Lambda.TimeoutSec != 0 {
		cfg.TimeoutSec = req.Lambda.TimeoutSec
	}
	if len(req.Lambda.Environment) > 0 {
		if cfg.Environment == nil {
			cfg.Environment = make(map[string]string, len(req.Lambda.Environment))
		}
		for k, v := range req.Lambda.Environment {
			cfg.Environment[k] = v
		}
	}
	if req.Lambda.Architecture != "" {
		cfg.Architecture = req.Lambda.Architecture
	}
	if cfg.Architecture == "" {
		cfg.Architecture = "x86_64"
	}
}

// resolveCredentials asks the external provider for credentials. Failures
// are fatal and never retried.
func (r *Resolver) resolveCredentials(ctx context.Context, req samlaunch.LaunchRequest, cfg *NormalizedConfig) error {
	if r.Credentials == nil {
		return nil
	}
	creds, err := r.Credentials.Resolve(ctx, req.Aws.Credentials, req.Aws.Region)
	if err != nil {
		return &CredentialsResolutionError{Profile: req.Aws.Credentials, Err: err}
	}
	cfg.Credentials = creds
	if cfg.Region == "" {
		cfg.Region = creds.Region
	}
	return nil
}

// syntheticTemplate builds the in-memory single-resource template for a code
// target. The resource's logical ID is the handler name, so env-vars.json is
// uniformly keyed by logical ID.
func syntheticTemplate(cfg *NormalizedConfig) *cfn.Template {
	props := map[string]any{
		"Handler": cfg.HandlerName,
		"CodeUri": cfg.CodeRoot,
		"Runtime": cfg.Runtime,
	}
	if cfg.MemoryMB != 0 {
		props["MemorySize"] = cfg.MemoryMB
	}
	if cfg.TimeoutSec != 0 {
		props["Timeout"] = cfg.TimeoutSec
	}
	if len(cfg.Environment) > 0 {
		vars := make(map[string]any, len(cfg.Environment))
		for k, v := range cfg.Environment {
			vars[k] = v
		}
		props["Environment"] = map[string]any{"Variables": vars}
	}
	return &cfn.Template{
		Resources: map[string]cfn.Resource{
			cfg.LogicalID: {
				LogicalID:  cfg.LogicalID,
				Type:       "AWS::Serverless::Function",
				Properties: props,
			},
		},
	}
}
