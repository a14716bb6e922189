package launch

import (
	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/resolve"
	"github.com/lex00/samlaunch-go/internal/runtimes"
)

// buildPython wires the debugpy (or ikpdb) attach: debugArgs is the
// in-container wrapper invocation bound to 0.0.0.0:<port>, and the wrapper
// grows a --debug flag only when the active log level is debug.
func buildPython(in Input, desc *samlaunch.LaunchDescriptor) {
	cfg := in.Config

	desc.Request = "attach"
	desc.Host = "localhost"
	desc.DebugArgs = cfg.Family.DebugArgs(in.Ports.Debug, runtimes.DebugArgsOptions{
		CodeRoot: cfg.CodeRoot,
		UseIkpdb: cfg.PythonDebugger == "ikpdb",
		Verbose:  in.verbose(),
	})
	desc.PathMappings = pythonPathMappings(cfg, in.Windows)
}

// pythonPathMappings defaults to codeRoot -> /var/task. On Windows each
// mapping with an upper-cased drive letter gains a lower-cased variant,
// placed first so it wins the first-match rule whichever casing the editor
// reports.
func pythonPathMappings(cfg *resolve.NormalizedConfig, windows bool) []samlaunch.PathMapping {
	mappings := cfg.PathMappings
	if len(mappings) == 0 {
		mappings = []samlaunch.PathMapping{{LocalRoot: cfg.CodeRoot, RemoteRoot: "/var/task"}}
	}

	if !windows {
		return mappings
	}

	out := make([]samlaunch.PathMapping, 0, len(mappings)*2)
	for _, m := range mappings {
		lower := lowerDriveLetter(m.LocalRoot)
		if lower != m.LocalRoot {
			out = append(out, samlaunch.PathMapping{LocalRoot: lower, RemoteRoot: m.RemoteRoot})
		}
		out = append(out, m)
	}
	return out
}
