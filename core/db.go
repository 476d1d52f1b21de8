package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by *sqlx.DB, *sqlx.Tx and *sqlx.Conn.
	DBExecutor interface {
		sqlx.ExecerContext
		sqlx.QueryerContext
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		Rebind(query string) string
	}

	// DBConnector hands out one dedicated connection per call; callers must Close it.
	DBConnector interface {
		Connx(ctx context.Context) (*sqlx.Conn, error)
		Stats() sql.DBStats
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
