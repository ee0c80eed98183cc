package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/kimseungO/news-sum/internal/config"
)

// Store owns the single database handle shared by the repositories.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the configured store and verifies the connection.
// The pool is capped at one connection: both jobs are sequential.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: build dsn: %w", err)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", d.name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", d.name, err)
	}

	if d.name == config.DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: set WAL mode: %w", err)
		}
	}

	return &Store{db: db, dialect: d}, nil
}

// EnsureSchema creates news_raw and news_sum when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if !s.dialect.ddlInTx {
		for _, stmt := range s.dialect.schema {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("storage: create tables: %w", err)
			}
		}
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range s.dialect.schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("storage: create tables: %w", err)
			}
		}
		return nil
	})
}

// Driver names the dialect in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// inTx runs fn in its own transaction, committing on success and rolling
// back on error.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

func buildDSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 3306)))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.Local
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil

	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 5432))),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil

	case config.DriverSQLite:
		if cfg.Name == "" {
			return "", fmt.Errorf("sqlite needs a database file name")
		}
		sep := "?"
		if strings.Contains(cfg.Name, "?") {
			sep = "&"
		}
		return cfg.Name + sep + "_pragma=busy_timeout(5000)", nil

	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func portOr(port, fallback int) int {
	if port == 0 {
		return fallback
	}
	return port
}
