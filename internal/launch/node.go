package launch

import samlaunch "github.com/lex00/samlaunch-go"

// buildNode wires the Node inspector attach: the process launches paused and
// the inspector client attaches over localhost.
func buildNode(in Input, desc *samlaunch.LaunchDescriptor) {
	cfg := in.Config

	desc.Request = "attach"
	desc.Address = "localhost"
	desc.Protocol = "inspector"
	desc.ContinueOnAttach = true
	desc.SkipFiles = cfg.Family.SkipFiles()

	if len(cfg.PathMappings) > 0 {
		desc.PathMappings = cfg.PathMappings
		return
	}
	desc.LocalRoot = cfg.CodeRoot
	desc.RemoteRoot = "/var/task"
}
