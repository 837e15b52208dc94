package entrygate

import (
	"testing"
	"time"

	"github.com/entrygate/entrygate/internal/difftest"
	"github.com/entrygate/entrygate/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    []probe.Target
		wantErr bool
	}{
		{"unset", map[string]string{}, nil, false},
		{"empty", map[string]string{EnvServices: ""}, nil, false},
		{
			"two services",
			map[string]string{EnvServices: "db:5432 cache:6379"},
			[]probe.Target{{Host: "db", Port: 5432}, {Host: "cache", Port: 6379}},
			false,
		},
		{"no colon", map[string]string{EnvServices: "db"}, nil, true},
		{"bad port", map[string]string{EnvServices: "db:http"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ServicesFromEnv(tt.env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			difftest.AssertSame(t, tt.want, got)
		})
	}
}

func TestTimeoutFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    time.Duration
		wantErr bool
	}{
		{"unset defaults to 60s", map[string]string{}, 60 * time.Second, false},
		{"empty defaults to 60s", map[string]string{EnvTimeout: ""}, 60 * time.Second, false},
		{"blank defaults to 60s", map[string]string{EnvTimeout: "  "}, 60 * time.Second, false},
		{"five seconds", map[string]string{EnvTimeout: "5"}, 5 * time.Second, false},
		{"zero is fatal, not a silent 60s", map[string]string{EnvTimeout: "0"}, 0, true},
		{"non-numeric is fatal", map[string]string{EnvTimeout: "soon"}, 0, true},
		{"fractional is fatal", map[string]string{EnvTimeout: "1.5"}, 0, true},
		{"negative is fatal", map[string]string{EnvTimeout: "-3"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeoutFromEnv(tt.env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
