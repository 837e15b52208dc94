package probe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
)

// Postgres probes by completing a full Postgres connection handshake and
// closing it. Postgres accepts TCP connections before it accepts sessions
// during crash recovery and init-script runs, so a bare TCP probe can pass
// while the database still rejects clients.
type Postgres struct {
	// User defaults to postgres.
	User string
	// Database defaults to the user's database.
	Database string
	// Password may be empty for trust or peer auth.
	Password string
}

// Check implements Probe.
func (p Postgres) Check(ctx context.Context, target Target) error {
	connString := fmt.Sprintf("host=%s port=%d sslmode=disable", target.Host, target.Port)
	user := p.User
	if user == "" {
		user = "postgres"
	}
	connString += " user=" + user
	if p.Database != "" {
		connString += " dbname=" + p.Database
	}
	if p.Password != "" {
		connString += " password=" + p.Password
	}
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("parse conn string: %w", err)
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}
