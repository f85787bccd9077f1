package git

import "fmt"

// Backend names accepted by NewClient
const (
	BackendCLI    = "cli"
	BackendNative = "native"
)

// NewClient returns the Client for a backend name; an empty name selects the CLI
func NewClient(backend string, runner Runner) (Client, error) {
	switch backend {
	case "", BackendCLI:
		if runner == nil {
			runner = NewExecRunner("GIT_TERMINAL_PROMPT=0")
		}
		return NewCLIClient(runner, DefaultBinary), nil
	case BackendNative:
		return NewNativeClient(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
