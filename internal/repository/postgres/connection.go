package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"nova/internal/domain/repositories"
)

// RepositoryConfig holds shared dependencies for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names
type TableNames struct {
	Threads          string
	Messages         string
	Artifacts        string
	ArtifactContents string
	Projects         string
	Tags             string
	ProjectTags      string
	Assistants       string
	UserProfiles     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Threads:          prefix + "threads",
		Messages:         prefix + "messages",
		Artifacts:        prefix + "artifacts",
		ArtifactContents: prefix + "artifact_contents",
		Projects:         prefix + "projects",
		Tags:             prefix + "tags",
		ProjectTags:      prefix + "project_tags",
		Assistants:       prefix + "assistants",
		UserProfiles:     prefix + "user_profiles",
	}
}

// CreateConnectionPool creates a pgx connection pool with PgBouncer
// compatibility for Supabase's transaction pooler.
//
// Supabase's pooler (port 6543) runs PgBouncer in transaction mode, which
// does not support prepared statements; pgx's default
// QueryExecModeCacheStatement breaks against it with "prepared statement
// already exists". QueryExecModeCacheDescribe keeps the extended protocol
// (needed so map[string]interface{} encodes to JSONB) while caching only
// statement descriptions, which PgBouncer tolerates. Direct connections
// (port 5432) keep pgx defaults. An explicit default_query_exec_mode in
// the connection string takes precedence over this auto-detection.
//
// Interpolated table prefixes (dev_/test_/prod_) are safe with prepared
// statements: the prefix is baked into the SQL text before it reaches the
// server, so each environment gets distinct statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context if one is present,
// otherwise the pool. Repositories call this on every query so they join
// an ambient transaction automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
