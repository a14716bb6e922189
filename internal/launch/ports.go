package launch

import (
	"fmt"
	"net"
)

// Ports are the ephemeral ports of one invocation. Allocated fresh per
// request, never persisted.
type Ports struct {
	Debug int
	API   int
}

// AllocatePorts asks the OS for ephemeral ports: a debug port unless noDebug,
// and an API port for api targets. No locking is needed; the OS hands out
// distinct ports per listener.
func AllocatePorts(needDebug, needAPI bool) (Ports, error) {
	var ports Ports
	var err error
	if needDebug {
		if ports.Debug, err = ephemeralPort(); err != nil {
			return Ports{}, err
		}
	}
	if needAPI {
		if ports.API, err = ephemeralPort(); err != nil {
			return Ports{}, err
		}
	}
	return ports, nil
}

func ephemeralPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocating ephemeral port: %w", err)
	}
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().(*net.TCPAddr).Port, nil
}
