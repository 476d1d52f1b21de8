package database

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	appfs "github.com/Sissypen/CAS-CCS-Attendance-System/fs"
)

const sqliteDriver = "sqlite"

var gooseDialects = map[string]string{
	core.EngineSQLite:   "sqlite3",
	core.EnginePostgres: "postgres",
}

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

func dataSource(conf core.DatabaseConfig, workDir string) (driver, dsn string, err error) {
	switch conf.Engine {
	case core.EngineSQLite:
		p := conf.Path
		if p != ":memory:" && !filepath.IsAbs(p) && workDir != "" {
			p = filepath.Join(workDir, p)
		}
		q := make(url.Values)
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		return sqliteDriver, p + "?" + q.Encode(), nil

	case core.EnginePostgres:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Engine,
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return conf.Engine, u.String(), nil

	default:
		return "", "", errors.Errorf("unsupported database engine %q", conf.Engine)
	}
}

// Open returns a connection pool for the configured engine. It does not connect.
func Open(conf *core.Config) (*sqlx.DB, error) {
	driver, dsn, err := dataSource(conf.Database, conf.WorkDir)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(ctx context.Context, db *sqlx.DB, maxAttempts int) error {
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Run executes a goose command ("up", "down", "status", "version", ...) against the engine's migrations.
func Run(db *sqlx.DB, engine, command string, args ...string) error {
	dialect, ok := gooseDialects[engine]
	if !ok {
		return errors.Errorf("unsupported database engine %q", engine)
	}
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	dir := path.Join("migrations", engine)
	if err := goose.Run(command, db.DB, dir, args...); err != nil {
		return errors.Wrapf(err, "running migration command %q", command)
	}
	return nil
}

func Migrate(db *sqlx.DB, engine string) error {
	if err := Run(db, engine, "up"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
