// Package runtimes is the static registry of supported Lambda runtime
// families: Node.js, Python, Java, .NET, and Go. Each family carries its
// default runtime, debugger type, and the in-container debug bootstrap
// wiring the descriptor builders dispatch on.
package runtimes

import (
	"fmt"
	"strings"
)

// Family is a runtime family tag.
type Family string

const (
	FamilyNode   Family = "node"
	FamilyPython Family = "python"
	FamilyJava   Family = "java"
	FamilyDotnet Family = "dotnet"
	FamilyGo     Family = "go"
)

// UnknownRuntimeError is a runtime string the registry does not know.
type UnknownRuntimeError struct {
	Runtime string
}

func (e *UnknownRuntimeError) Error() string {
	if e.Runtime == "" {
		return "no runtime specified and none could be inferred"
	}
	return fmt.Sprintf("unknown runtime %q", e.Runtime)
}

// DebugArgsOptions tune the generated debug bootstrap command line.
type DebugArgsOptions struct {
	// CodeRoot is the host-side code directory (ikpdb needs it).
	CodeRoot string
	// UseIkpdb selects the alternate Python debugger grammar.
	UseIkpdb bool
	// Verbose is true when the active log level is debug; the wrappers grow
	// their own debug flag in that case.
	Verbose bool
}

// Spec is one runtime family's registry entry.
type Spec struct {
	Family         Family
	DefaultRuntime string
	// DebugType is the debug adapter type the descriptor advertises.
	DebugType string
	// Architectures the family supports.
	Architectures []string

	prefixes       []string
	skipFiles      []string
	containerDebug func(architecture string) bool
	debugArgs      func(port int, opts DebugArgsOptions) []string
}

// SkipFiles returns the family's fixed skip-file patterns. Go intentionally
// returns an empty (non-nil) list.
func (s Spec) SkipFiles() []string {
	if s.skipFiles == nil {
		return nil
	}
	out := make([]string, len(s.skipFiles))
	copy(out, s.skipFiles)
	return out
}

// RequiresContainerDebug reports whether debugging this family must run in a
// container for the given architecture.
func (s Spec) RequiresContainerDebug(architecture string) bool {
	if s.containerDebug == nil {
		return false
	}
	return s.containerDebug(architecture)
}

// DebugArgs produces the in-container debug bootstrap command line for the
// family, bound to the given port.
func (s Spec) DebugArgs(port int, opts DebugArgsOptions) []string {
	if s.debugArgs == nil {
		return nil
	}
	return s.debugArgs(port, opts)
}

// debugpyWrapper is where the build step stages the Python wrapper script.
const debugpyWrapper = "/tmp/lambci_debug_files/py_debug_wrapper.py"

func pythonDebugArgs(port int, opts DebugArgsOptions) []string {
	if opts.UseIkpdb {
		arg := fmt.Sprintf(
			"-m ikp3db --ikpdb-address=0.0.0.0 --ikpdb-port=%d --ikpdb-working-directory=/var/task/ --ikpdb-client-working-directory=%s",
			port, opts.CodeRoot)
		if opts.Verbose {
			arg += " --ikpdb-log=BEXFPG"
		}
		return []string{arg}
	}

	arg := fmt.Sprintf("%s --listen 0.0.0.0:%d --wait-for-client --log-to-stderr", debugpyWrapper, port)
	if opts.Verbose {
		arg += " --debug"
	}
	return []string{arg}
}

// JdwpAgent is the _JAVA_OPTIONS / debug-args JDWP agent string for Java.
func JdwpAgent(port int) string {
	return fmt.Sprintf("-agentlib:jdwp=transport=dt_socket,server=y,suspend=y,quiet=y,address=*:%d", port)
}

var registry = []Spec{
	{
		Family:         FamilyNode,
		DefaultRuntime: "nodejs22.x",
		DebugType:      "node",
		Architectures:  []string{"x86_64", "arm64"},
		prefixes:       []string{"nodejs"},
		skipFiles: []string{
			"/var/runtime/node_modules/**/*.js",
			"<node_internals>/**/*.js",
		},
	},
	{
		Family:         FamilyPython,
		DefaultRuntime: "python3.13",
		DebugType:      "python",
		Architectures:  []string{"x86_64", "arm64"},
		prefixes:       []string{"python"},
		debugArgs:      pythonDebugArgs,
	},
	{
		Family:         FamilyJava,
		DefaultRuntime: "java21",
		DebugType:      "java",
		Architectures:  []string{"x86_64", "arm64"},
		prefixes:       []string{"java"},
		debugArgs: func(port int, _ DebugArgsOptions) []string {
			return []string{JdwpAgent(port)}
		},
	},
	{
		Family:         FamilyDotnet,
		DefaultRuntime: "dotnet8",
		DebugType:      "coreclr",
		Architectures:  []string{"x86_64", "arm64"},
		prefixes:       []string{"dotnet"},
	},
	{
		Family:         FamilyGo,
		DefaultRuntime: "go1.x",
		DebugType:      "go",
		Architectures:  []string{"x86_64"},
		prefixes:       []string{"go"},
		skipFiles:      []string{},
		// Delve runs inside the execution container on every architecture.
		containerDebug: func(string) bool { return true },
	},
}

// FamilyFor maps a Lambda runtime string (e.g. "python3.12") to its family
// spec.
func FamilyFor(runtime string) (Spec, error) {
	for _, s := range registry {
		for _, p := range s.prefixes {
			if strings.HasPrefix(runtime, p) {
				return s, nil
			}
		}
	}
	return Spec{}, &UnknownRuntimeError{Runtime: runtime}
}

// Get returns the spec for a family.
func Get(f Family) (Spec, bool) {
	for _, s := range registry {
		if s.Family == f {
			return s, true
		}
	}
	return Spec{}, false
}

// All returns every registered family, in registration order.
func All() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}
