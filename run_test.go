package entrygate

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrygate/entrygate/internal/errs"
	"github.com/entrygate/entrygate/internal/gate"
	"github.com/entrygate/entrygate/internal/ports"
	"github.com/entrygate/entrygate/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRun_MaterializeThenGate(t *testing.T) {
	root := t.TempDir()
	conf := filepath.Join(root, "app.properties")
	require.NoError(t, os.WriteFile(conf, []byte("url=${db.url}\n"), 0o644))

	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer errs.CaptureT(t, l.Close, "close listener")
	target, err := probe.ParseTarget(l.Addr().String())
	require.NoError(t, err)

	err = Run(context.Background(), RunOptions{
		Env:      map[string]string{"DB_URL": "db.url;postgres://db:5432/app"},
		RootDir:  root,
		Targets:  []probe.Target{target},
		Timeout:  2 * time.Second,
		Interval: 20 * time.Millisecond,
		LogLevel: zapcore.ErrorLevel,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, "url=postgres://db:5432/app\n", string(got))
}

func TestRun_GateTimeout(t *testing.T) {
	deadPort, err := ports.FindAvailable()
	require.NoError(t, err)
	target := probe.Target{Host: "localhost", Port: deadPort}

	err = Run(context.Background(), RunOptions{
		Targets:  []probe.Target{target},
		Timeout:  100 * time.Millisecond,
		Interval: 20 * time.Millisecond,
		// Argv must never be launched on a timeout; a command that would
		// fail loudly proves exec was not reached.
		Argv:     []string{"/nonexistent-payload"},
		LogLevel: zapcore.ErrorLevel,
	})
	var timeoutErr *gate.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, target, timeoutErr.Target)
}

func TestRun_MaterializerError(t *testing.T) {
	err := Run(context.Background(), RunOptions{
		Env:      map[string]string{"X": "k;v"},
		RootDir:  filepath.Join(t.TempDir(), "missing"),
		LogLevel: zapcore.ErrorLevel,
	})
	require.Error(t, err)
	var timeoutErr *gate.TimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "materializer failure must not look like a gate timeout")
}

func TestRun_NoTargetsNoRoot(t *testing.T) {
	start := time.Now()
	err := Run(context.Background(), RunOptions{LogLevel: zapcore.ErrorLevel})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
