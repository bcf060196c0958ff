// Package shelf stores accounts and the catalog in a single sqlite file.
package shelf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/andrebq/toolshelf/shelf/migrations"
)

type (
	Shelf struct {
		db  *sql.DB
		now func() time.Time
	}
)

const driverName = "sqlite3_shelf"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// sqlite lower() only folds ascii
			return conn.RegisterFunc("fold", fold, true)
		},
	})
}

func fold(s string) string {
	return strings.ToLower(s)
}

// Open opens (creating if needed) the shelf at file and applies any
// pending migration.
func Open(ctx context.Context, file string) (*Shelf, error) {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store shelf, cause %w", dir, err)
		}
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_foreign_keys=1&_busy_timeout=5000&mode=rwc", file)
	conn, err := sql.Open(driverName, connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping shelf %v, cause %w", file, err)
	}
	s := &Shelf{db: conn, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Shelf) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("unable to load migrations, cause %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("unable to migrate shelf, cause %w", err)
	}
	return nil
}

func (s *Shelf) Close() error {
	return s.db.Close()
}

func (s *Shelf) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == code
}

func toUnix(t time.Time) int64 {
	return t.UnixMilli()
}

func fromUnix(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
