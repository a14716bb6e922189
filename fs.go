package samlaunch

import "os"

// FS is the filesystem surface the resolver and artifact writer depend on.
// Tests substitute an in-memory implementation.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
	Exists(path string) bool
}

// OSFS implements FS against the host filesystem.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
