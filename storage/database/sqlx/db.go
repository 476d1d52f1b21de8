package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

const pqUniqueViolation = "23505"

// withConn runs fn on a dedicated connection, released on every return path.
func withConn(ctx context.Context, db core.DBConnector, fn func(conn *sqlx.Conn) error) error {
	conn, err := db.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquiring connection")
	}
	defer func() { _ = conn.Close() }()
	return fn(conn)
}

func trapNoRowsErr(err error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == pqUniqueViolation
	case *sqlite.Error:
		// primary code only, unless extended result codes are enabled
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(e.Code() == sqlite3.SQLITE_CONSTRAINT && strings.Contains(e.Error(), "UNIQUE"))
	default:
		return false
	}
}

// checkAffected maps an update or delete that matched nothing to school.ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return school.ErrNotFound
	}
	return nil
}

// insertReturningID works on both engines; SQLite supports RETURNING since 3.35.
func insertReturningID(ctx context.Context, conn core.DBExecutor, query string, args ...interface{}) (int, error) {
	var id int
	err := conn.QueryRowxContext(ctx, conn.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}
