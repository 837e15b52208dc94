package probe

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Docker probes a sibling container through the Docker API instead of the
// network: the target host names the container, and the probe reports ready
// once the container runs and its health check, if it has one, is healthy.
// When the target port is nonzero, the port must also appear in the
// container's port map.
//
// Useful when the gating process has a Docker socket but no network route to
// the dependency, e.g. compose setups with internal-only services.
type Docker struct {
	docker *dockerClient.Client
}

// NewDocker builds a Docker probe from the environment, honoring DOCKER_HOST
// and friends.
func NewDocker() (*Docker, error) {
	cl, err := dockerClient.NewClientWithOpts(dockerClient.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Docker{docker: cl}, nil
}

// Check implements Probe.
func (d *Docker) Check(ctx context.Context, target Target) error {
	inspect, err := d.docker.ContainerInspect(ctx, target.Host)
	if err != nil {
		return fmt.Errorf("inspect container %s: %w", target.Host, err)
	}
	state := inspect.State
	if state == nil || !state.Running {
		status := "unknown"
		if state != nil {
			status = state.Status
		}
		return fmt.Errorf("container %s not running (status %s)", target.Host, status)
	}
	if state.Health != nil && state.Health.Status != types.Healthy {
		return fmt.Errorf("container %s health is %s", target.Host, state.Health.Status)
	}
	if target.Port > 0 {
		port := nat.Port(fmt.Sprintf("%d/tcp", target.Port))
		if inspect.NetworkSettings == nil {
			return fmt.Errorf("container %s has no network settings", target.Host)
		}
		if _, ok := inspect.NetworkSettings.Ports[port]; !ok {
			return fmt.Errorf("container %s does not expose port %s", target.Host, port)
		}
	}
	return nil
}
