package storage

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/kimseungO/news-sum/internal/config"
)

const (
	rawTable     = "news_raw"
	summaryTable = "news_sum"
)

// dialect captures the per-driver differences: bind variables, upsert
// clause and DDL.
type dialect struct {
	name        string
	driverName  string
	placeholder sq.PlaceholderFormat
	schema      []string
	// ddlInTx is false where DDL commits implicitly (MySQL).
	ddlInTx bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return dialect{
			name:        config.DriverMySQL,
			driverName:  "mysql",
			placeholder: sq.Question,
			schema:      mysqlSchema,
		}, nil
	case config.DriverPostgres:
		return dialect{
			name:        config.DriverPostgres,
			driverName:  "postgres",
			placeholder: sq.Dollar,
			schema:      postgresSchema,
			ddlInTx:     true,
		}, nil
	case config.DriverSQLite:
		return dialect{
			name:        config.DriverSQLite,
			driverName:  "sqlite",
			placeholder: sq.Question,
			schema:      sqliteSchema,
			ddlInTx:     true,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// upsertSuffix renders the "on key conflict update every other column"
// clause appended to an INSERT.
func (d dialect) upsertSuffix(key string, columns []string) string {
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		if d.name == config.DriverMySQL {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}

	if d.name == config.DriverMySQL {
		return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
}

func (d dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS news_raw (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title TEXT,
		url VARCHAR(767) NOT NULL UNIQUE,
		contents LONGTEXT,
		thumbnail TEXT,
		company VARCHAR(100),
		subject VARCHAR(10),
		upload_date DATETIME,
		cluster2nd INT,
		keyword VARCHAR(255),
		counts INT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS news_sum (
		topic_id INT PRIMARY KEY,
		topic_title VARCHAR(255),
		topic_content TEXT,
		new_cnt INT,
		sum_date TIMESTAMP NULL,
		keyword VARCHAR(500)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS news_raw (
		id BIGSERIAL PRIMARY KEY,
		title TEXT,
		url VARCHAR(767) NOT NULL UNIQUE,
		contents TEXT,
		thumbnail TEXT,
		company VARCHAR(100),
		subject VARCHAR(10),
		upload_date TIMESTAMP,
		cluster2nd INTEGER,
		keyword VARCHAR(255),
		counts INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS news_sum (
		topic_id BIGINT PRIMARY KEY,
		topic_title VARCHAR(255),
		topic_content TEXT,
		new_cnt INTEGER,
		sum_date TIMESTAMP,
		keyword VARCHAR(500)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS news_raw (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		url TEXT NOT NULL UNIQUE,
		contents TEXT,
		thumbnail TEXT,
		company TEXT,
		subject TEXT,
		upload_date DATETIME,
		cluster2nd INTEGER,
		keyword TEXT,
		counts INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS news_sum (
		topic_id INTEGER PRIMARY KEY,
		topic_title TEXT,
		topic_content TEXT,
		new_cnt INTEGER,
		sum_date DATETIME,
		keyword TEXT
	)`,
}
