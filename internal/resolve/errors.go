package resolve

import (
	"fmt"

	samlaunch "github.com/lex00/samlaunch-go"
)

// NoWorkspaceFolderError: template and api targets cannot resolve without a
// workspace folder.
type NoWorkspaceFolderError struct {
	Kind samlaunch.TargetKind
}

func (e *NoWorkspaceFolderError) Error() string {
	return fmt.Sprintf("%s targets require a workspace folder", e.Kind)
}

// InvalidRequestTypeError: code targets only accept direct-invoke requests.
type InvalidRequestTypeError struct {
	Request string
}

func (e *InvalidRequestTypeError) Error() string {
	return fmt.Sprintf("invalid request type %q: code targets require %q", e.Request, samlaunch.RequestDirectInvoke)
}

// InvalidTargetTypeError: the invoke target names an unknown kind.
type InvalidTargetTypeError struct {
	Target string
}

func (e *InvalidTargetTypeError) Error() string {
	return fmt.Sprintf("invalid invoke target type %q", e.Target)
}

// CredentialsResolutionError: the external credentials collaborator failed.
// Surfaced immediately, never retried.
type CredentialsResolutionError struct {
	Profile string
	Err     error
}

func (e *CredentialsResolutionError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("resolving credentials: %v", e.Err)
	}
	return fmt.Sprintf("resolving credentials for profile %q: %v", e.Profile, e.Err)
}

func (e *CredentialsResolutionError) Unwrap() error { return e.Err }
