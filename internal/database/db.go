// Package database provides database connection management.
package database

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mudadib/wortschatz/internal/config"
)

// Open opens a connection to the vocabulary database. The driver is taken
// from the config: "sqlite3" opens the database file at cfg.Path, "mysql"
// connects to the configured server.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		db, err := sqlx.Open("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlx.Open(sqlite3) > %w", err)
		}
		return db, nil
	case "mysql":
		mysqlCfg := mysql.NewConfig()
		mysqlCfg.User = cfg.Username
		mysqlCfg.Passwd = cfg.Password
		mysqlCfg.Net = "tcp"
		mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mysqlCfg.DBName = cfg.Database
		mysqlCfg.ParseTime = true

		db, err := sqlx.Open("mysql", mysqlCfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("sqlx.Open(mysql) > %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
