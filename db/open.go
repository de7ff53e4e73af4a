package db

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/campus-fixit/internal"
)

// Conn is one connection pool seen through both sqlx (reporting queries)
// and gorm (repositories).
type Conn struct {
	SQLX *sqlx.DB
	Gorm *gorm.DB
}

func (c *Conn) Close() error {
	return c.SQLX.Close()
}

// Open connects, applies pool settings and pings.
func Open(ctx context.Context, cfg internal.DatabaseConfig) (*Conn, error) {
	driverName, err := SQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlxDB, err := sqlx.Open(driverName, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlxDB.PingContext(ctx); err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var dialector gorm.Dialector
	if cfg.Driver == DriverPostgres {
		dialector = postgres.New(postgres.Config{Conn: sqlxDB.DB})
	} else {
		dialector = &sqlite.Dialector{DriverName: driverName, Conn: sqlxDB.DB}
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Conn{SQLX: sqlxDB, Gorm: gormDB}, nil
}
