// Package samlaunch resolves partially-specified AWS SAM debug configurations
// into fully-populated, runtime-specific launch descriptors.
//
// A caller (an editor integration, or the samlaunch CLI) hands the resolver a
// user-authored launch configuration:
//
//	{
//	    "type": "aws-sam",
//	    "request": "direct-invoke",
//	    "invokeTarget": {
//	        "target": "template",
//	        "templatePath": "./template.yaml",
//	        "logicalId": "HelloWorldFunction"
//	    }
//	}
//
// and receives back a LaunchDescriptor with the code root, handler, debugger
// wiring, and the intermediate files (env-vars.json, event.json, input
// template) that the external `sam build` / `sam local invoke` step consumes.
package samlaunch

import "context"

// TargetKind selects whether a launch request addresses raw code, a
// template-declared resource, or an API Gateway route into that resource.
type TargetKind string

const (
	// TargetCode invokes a handler directly from a project directory.
	TargetCode TargetKind = "code"
	// TargetTemplate invokes a resource declared in a SAM template.
	TargetTemplate TargetKind = "template"
	// TargetAPI invokes a template resource through an API Gateway route.
	TargetAPI TargetKind = "api"
)

// RequestDirectInvoke is the only request type code targets accept.
const RequestDirectInvoke = "direct-invoke"

// InvokeTarget identifies what a launch request runs. Exactly one variant is
// active: code targets use ProjectRoot/LambdaHandler, template and api
// targets use TemplatePath/LogicalID.
type InvokeTarget struct {
	Target        TargetKind `json:"target"`
	ProjectRoot   string     `json:"projectRoot,omitempty"`
	LambdaHandler string     `json:"lambdaHandler,omitempty"`
	TemplatePath  string     `json:"templatePath,omitempty"`
	LogicalID     string     `json:"logicalId,omitempty"`
}

// PathMapping is a local-to-remote directory correspondence used to translate
// breakpoints between the host and the execution container.
type PathMapping struct {
	LocalRoot  string `json:"localRoot"`
	RemoteRoot string `json:"remoteRoot"`
}

// Payload is the event payload for an invocation: inline JSON or a file path.
type Payload struct {
	JSON map[string]any `json:"json,omitempty"`
	Path string         `json:"path,omitempty"`
}

// LambdaOverrides are optional user-supplied overrides that take precedence
// over template-resolved values.
type LambdaOverrides struct {
	Runtime        string            `json:"runtime,omitempty"`
	MemoryMB       int               `json:"memoryMb,omitempty"`
	TimeoutSec     int               `json:"timeoutSec,omitempty"`
	Environment    map[string]string `json:"environmentVariables,omitempty"`
	Payload        Payload           `json:"payload,omitempty"`
	PathMappings   []PathMapping     `json:"pathMappings,omitempty"`
	Architecture   string            `json:"architecture,omitempty"`
	PythonDebugger string            `json:"pythonDebugger,omitempty"` // "debugpy" (default) or "ikpdb"
}

// AwsOverrides carry the per-invocation aws section: a credentials profile
// reference and a region. They sit below explicit lambda overrides and above
// template-resolved values in the merge order.
type AwsOverrides struct {
	Credentials string `json:"credentials,omitempty"`
	Region      string `json:"region,omitempty"`
}

// SamOverrides tune how the external SAM CLI step is fed.
type SamOverrides struct {
	// BuildDir overrides the randomly named base build directory. Respected
	// verbatim when set.
	BuildDir string `json:"buildDir,omitempty"`
	// Parameters override template parameter values during !Ref resolution.
	Parameters map[string]string `json:"parameters,omitempty"`
}

// APIConfig is the API invocation envelope attached to api targets. It rides
// along on the descriptor; the launch mechanics themselves do not read it.
type APIConfig struct {
	Path        string            `json:"path"`
	Method      string            `json:"httpMethod"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryString string            `json:"querystring,omitempty"`
}

// LaunchRequest is a user-authored, partially-specified debug configuration,
// the shape an editor stores in its launch configuration file.
type LaunchRequest struct {
	Type    string          `json:"type"`
	Request string          `json:"request"`
	Name    string          `json:"name,omitempty"`
	NoDebug bool            `json:"noDebug,omitempty"`
	Target  InvokeTarget    `json:"invokeTarget"`
	Lambda  LambdaOverrides `json:"lambda,omitempty"`
	Aws     AwsOverrides    `json:"aws,omitempty"`
	Sam     SamOverrides    `json:"sam,omitempty"`
	API     *APIConfig      `json:"api,omitempty"`
}

// LaunchConfigFile is the on-disk container for launch requests, matching the
// editor's launch.json layout.
type LaunchConfigFile struct {
	Version        string          `json:"version,omitempty"`
	Configurations []LaunchRequest `json:"configurations"`
}

// WorkspaceFolder is the workspace a launch request resolves inside.
type WorkspaceFolder struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Index int    `json:"index"`
}

// Credentials are resolved AWS credentials handed to the launcher.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Source          string
	Region          string
}

// CredentialsProvider resolves a profile reference to credentials. Failures
// are surfaced immediately and never retried.
type CredentialsProvider interface {
	Resolve(ctx context.Context, profile, region string) (Credentials, error)
}

// PipeTransport is the .NET vsdbg shell-out wiring: the debugger client
// reaches the in-container vsdbg through `docker exec`.
type PipeTransport struct {
	PipeProgram  string   `json:"pipeProgram"`
	PipeArgs     []string `json:"pipeArgs"`
	DebuggerPath string   `json:"debuggerPath"`
	PipeCwd      string   `json:"pipeCwd"`
}

// WindowsOverrides holds the `windows:` variant of platform-sensitive
// descriptor fields.
type WindowsOverrides struct {
	PipeTransport *PipeTransport `json:"pipeTransport,omitempty"`
}

// LaunchDescriptor is the fully resolved, runtime-specific structure handed
// to the external debug-adapter launcher. Created fresh per request, never
// reused; the launcher cleans up BaseBuildDir after the process ends.
type LaunchDescriptor struct {
	Type    string `json:"type"`
	Request string `json:"request"`
	Name    string `json:"name,omitempty"`

	Runtime       string `json:"runtime"`
	RuntimeFamily string `json:"runtimeFamily"`
	HandlerName   string `json:"handlerName"`
	CodeRoot      string `json:"codeRoot"`
	Architecture  string `json:"architecture,omitempty"`
	Region        string `json:"region,omitempty"`
	NoDebug       bool   `json:"noDebug,omitempty"`

	// BaseBuildDir holds the artifacts below; TemplatePath is the input
	// template the SAM CLI builds (synthetic for code targets).
	BaseBuildDir     string            `json:"baseBuildDir"`
	TemplatePath     string            `json:"templatePath"`
	EnvFile          string            `json:"envFile,omitempty"`
	EventPayloadFile string            `json:"eventPayloadFile,omitempty"`
	ContainerEnvFile string            `json:"containerEnvFile,omitempty"`
	ContainerEnvVars map[string]string `json:"containerEnvVars,omitempty"`

	DebugPort int `json:"debugPort,omitempty"`
	Port      int `json:"port"`
	APIPort   int `json:"apiPort,omitempty"`

	// Debugger wiring, populated per runtime family.
	Address          string            `json:"address,omitempty"`  // Node inspector
	Protocol         string            `json:"protocol,omitempty"` // Node inspector
	ContinueOnAttach bool              `json:"continueOnAttach,omitempty"`
	Host             string            `json:"host,omitempty"`     // Python, Go
	HostName         string            `json:"hostName,omitempty"` // Java JDWP
	Mode             string            `json:"mode,omitempty"`     // Go delve
	DebugArgs        []string          `json:"debugArgs,omitempty"`
	SkipFiles        []string          `json:"skipFiles,omitempty"`
	LocalRoot        string            `json:"localRoot,omitempty"`
	RemoteRoot       string            `json:"remoteRoot,omitempty"`
	PathMappings     []PathMapping     `json:"pathMappings,omitempty"`
	PipeTransport    *PipeTransport    `json:"pipeTransport,omitempty"` // .NET vsdbg
	Windows          *WindowsOverrides `json:"windows,omitempty"`
	SourceFileMap    map[string]string `json:"sourceFileMap,omitempty"`

	API *APIConfig `json:"api,omitempty"`

	// Credentials are handed to the launcher in memory only.
	Credentials Credentials `json:"-"`
}
