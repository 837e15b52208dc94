package entrygate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/entrygate/entrygate/internal/probe"
)

const (
	// EnvServices holds a whitespace-separated ordered list of host:port
	// tokens. Absent or empty means no targets to gate on.
	EnvServices = "SERVICES"
	// EnvTimeout holds the per-target budget as an integer number of
	// seconds.
	EnvTimeout = "TIMEOUT"
	// DefaultTimeout applies when EnvTimeout is unset or empty.
	DefaultTimeout = 60 * time.Second
)

// ServicesFromEnv parses the SERVICES entry of env into ordered targets. A
// malformed token is a configuration defect and fails fast.
func ServicesFromEnv(env map[string]string) ([]probe.Target, error) {
	return probe.ParseServices(env[EnvServices])
}

// TimeoutFromEnv parses the TIMEOUT entry of env. Unset or empty falls back
// to DefaultTimeout; anything else must be a positive integer number of
// seconds. Zero is rejected rather than accepted: Run treats a zero budget
// as "use the default", so passing it through would silently turn an
// explicit TIMEOUT=0 into 60 seconds.
func TimeoutFromEnv(env map[string]string) (time.Duration, error) {
	raw := strings.TrimSpace(env[EnvTimeout])
	if raw == "" {
		return DefaultTimeout, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not an integer number of seconds", EnvTimeout, raw)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("%s value %d must be a positive number of seconds", EnvTimeout, secs)
	}
	return time.Duration(secs) * time.Second, nil
}
