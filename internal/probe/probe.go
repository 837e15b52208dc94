// Package probe defines dependency targets and the readiness probes that
// check them. A probe establishes that a single target is reachable; the gate
// package owns retries and deadlines, so a probe performs exactly one
// attempt, bounded by the deadline on its context.
package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Target is a dependency the startup sequence must confirm is reachable,
// parsed from a host:port token.
type Target struct {
	Host string
	Port int
}

// ParseTarget parses a host:port token. The port must be in 1-65535. IPv6
// literals use the bracketed form, [::1]:5432.
func ParseTarget(s string) (Target, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Target{}, fmt.Errorf("parse target %q: %w", s, err)
	}
	if host == "" {
		return Target{}, fmt.Errorf("parse target %q: empty host", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Target{}, fmt.Errorf("parse target %q: port %q is not a number", s, portStr)
	}
	if port < 1 || port > 65535 {
		return Target{}, fmt.Errorf("parse target %q: port %d out of range 1-65535", s, port)
	}
	return Target{Host: host, Port: port}, nil
}

// ParseServices parses a whitespace-separated list of host:port tokens,
// preserving order. An empty or all-whitespace string yields no targets.
func ParseServices(s string) ([]Target, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	targets := make([]Target, len(fields))
	for i, f := range fields {
		t, err := ParseTarget(f)
		if err != nil {
			return nil, err
		}
		targets[i] = t
	}
	return targets, nil
}

// String renders the target back as host:port, which is also its dialable
// address.
func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Probe checks whether one target is currently ready. A nil return means
// ready; any error means not ready yet. Check must honor ctx's deadline so a
// hung attempt cannot outlive its budget.
type Probe interface {
	Check(ctx context.Context, target Target) error
}

// TCP probes by completing a TCP connection and closing it immediately. No
// bytes are exchanged.
type TCP struct{}

// Check implements Probe.
func (TCP) Check(ctx context.Context, target Target) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target.String())
	if err != nil {
		return err
	}
	return conn.Close()
}
