package launch

import samlaunch "github.com/lex00/samlaunch-go"

// buildGo wires the legacy remote-delve adapter.
func buildGo(in Input, desc *samlaunch.LaunchDescriptor) {
	desc.Request = "attach"
	desc.Mode = "remote"
	desc.Host = "127.0.0.1"
	desc.SkipFiles = in.Config.Family.SkipFiles()
}
