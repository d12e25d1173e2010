package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/spec-kit/user-migration/internal/config"
)

// MySQL wraps the clinical-records database handle.
type MySQL struct {
	DB *sql.DB
}

// MySQLDSN builds the driver DSN from discrete connection values.
func MySQLDSN(cfg config.MySQLConfig) string {
	driverCfg := mysql.NewConfig()
	driverCfg.User = cfg.User
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	driverCfg.DBName = cfg.Database
	driverCfg.ParseTime = true
	if cfg.Charset != "" {
		driverCfg.Params = map[string]string{"charset": cfg.Charset}
	}
	return driverCfg.FormatDSN()
}

// NewMySQL opens and pings the clinical-records database.
func NewMySQL(ctx context.Context, cfg config.MySQLConfig, logger *zap.Logger) (*MySQL, error) {
	db, err := sql.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("connected to clinical-records database",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))
	return &MySQL{DB: db}, nil
}

// Close releases the database handle.
func (m *MySQL) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}
