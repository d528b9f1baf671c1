package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"habline/internal/config"
	"habline/internal/db"
	"habline/internal/engine"
	"habline/internal/migrate"
	habiticasdk "habline/sdk/go"
)

// Session bundles everything a command needs: auth config, local state and
// an engine wired to the remote service.
type Session struct {
	Config *config.Config
	DB     *sql.DB
	Client *habiticasdk.Client
	Engine engine.Engine
}

// OpenState opens and migrates the workspace state database.
func OpenState(ctx context.Context, workspace string) (*sql.DB, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if _, err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", db.Path(workspace), err)
	}
	return conn, nil
}

// Open loads auth.cfg from the workspace and builds a session. out receives
// per-task progress lines.
func Open(ctx context.Context, workspace string, out io.Writer) (*Session, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	conn, err := OpenState(ctx, workspace)
	if err != nil {
		return nil, err
	}
	client := habiticasdk.New(cfg.URL, cfg.Login, cfg.Password)
	return &Session{
		Config: cfg,
		DB:     conn,
		Client: client,
		Engine: engine.New(client, conn, out),
	}, nil
}

func (s *Session) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
