package data

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "sales.db"

	DriverSQLite = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	serverMaxConns        = 10
	serverConnMaxLifetime = 30 * time.Minute
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Store reads sales data from a SQLite file or a MySQL/MariaDB or
// PostgreSQL server.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the store described by dsn. mysql:// and mariadb:// URLs
// (or native go-sql-driver DSNs containing "@tcp(") select MySQL,
// postgres:// and postgresql:// URLs select PostgreSQL, anything else is
// treated as a SQLite file path and initialized on open.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}

	switch {
	case isMySQL(dsn):
		native, err := toMySQLDSN(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "invalid mysql dsn")
		}
		return openServer(DriverMySQL, native)
	case isPostgres(dsn):
		return openServer(DriverPostgres, dsn)
	}

	if err := Init(dsn); err != nil {
		return nil, err
	}
	db, err := GetDB(dsn)
	if err != nil {
		return nil, err
	}
	slog.Debug("opened sqlite store", "path", dsn)
	return &Store{db: db, driver: DriverSQLite}, nil
}

// openServer opens a pooled connection to a database server. The schema
// there is owned by the import step, so no DDL is applied.
func openServer(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}
	db.SetMaxOpenConns(serverMaxConns)
	db.SetMaxIdleConns(serverMaxConns)
	db.SetConnMaxLifetime(serverConnMaxLifetime)
	slog.Debug("opened server store", "driver", driver)
	return &Store{db: db, driver: driver}, nil
}

// Init applies the SQLite schema. The DDL only creates what is missing, so
// existing databases, including empty files, are safe to initialize.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", dbFilePath)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
	}
	slog.Debug("db schema ready", "path", dbFilePath)

	return nil
}

func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// query adapts double-quoted identifiers to the store dialect. SQLite and
// PostgreSQL take them as written.
func (s *Store) query(q string) string {
	if s.driver == DriverMySQL {
		return strings.ReplaceAll(q, `"`, "`")
	}
	return q
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://")
}

func isMySQL(dsn string) bool {
	return strings.HasPrefix(dsn, "mariadb://") ||
		strings.HasPrefix(dsn, "mysql://") ||
		strings.Contains(dsn, "@tcp(")
}

// toMySQLDSN converts mariadb:// and mysql:// URLs into the go-sql-driver
// format. Native DSNs pass through unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse dsn")
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	name := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || name == "" {
		return "", errors.New("incomplete dsn, user, host and database are required")
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, name), nil
}
