/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// ErrNotConnected is returned by operations that need an open connection.
var ErrNotConnected = errors.New("database not connected")

const healthPingTimeout = 5 * time.Second

// driverSpec knows how to open one family of databases.
type driverSpec struct {
	driver  string
	dsn     func(cfg *ConnectionConfig) string
	dialect func() schema.Dialect
}

var drivers = map[string]driverSpec{
	"mysql": {
		driver: "mysql",
		dsn:    mysqlDSN,
		dialect: func() schema.Dialect {
			return mysqldialect.New()
		},
	},
	"postgres": {
		driver: "postgres",
		dsn:    postgresDSN,
		dialect: func() schema.Dialect {
			return pgdialect.New()
		},
	},
	"sqlite": {
		driver: sqliteshim.ShimName,
		dsn:    sqliteDSN,
		dialect: func() schema.Dialect {
			return sqlitedialect.New()
		},
	},
}

func lookupDriver(dbType string) (driverSpec, bool) {
	switch dbType {
	case "postgresql":
		dbType = "postgres"
	case "sqlite3":
		dbType = "sqlite"
	}
	d, ok := drivers[dbType]
	return d, ok
}

func mysqlDSN(cfg *ConnectionConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()))
}

func sqliteDSN(cfg *ConnectionConfig) string {
	if cfg.DBName == ":memory:" {
		return "file::memory:?cache=shared"
	}
	return cfg.DBName + ".db"
}

type defaultDatabaseManager struct {
	config *ConnectionConfig
	logger Logger

	mu             sync.RWMutex
	db             *bun.DB
	sqlDB          *sql.DB
	lastStatus     *HealthStatus
	reconnectTries int
	onConnect      []func(db *bun.DB)

	// cancels the background health monitor; nil when it is not running
	stopMonitor context.CancelFunc
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. A nil
// config selects DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	return &defaultDatabaseManager{config: config, lastStatus: &HealthStatus{}}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := dm.openLocked(ctx); err != nil {
		return err
	}
	if dm.config.HealthCheckInterval > 0 && dm.stopMonitor == nil {
		monitorCtx, cancel := context.WithCancel(context.Background())
		dm.stopMonitor = cancel
		go dm.monitor(monitorCtx)
	}
	return nil
}

func (dm *defaultDatabaseManager) openLocked(ctx context.Context) error {
	if dm.db != nil {
		return nil
	}

	spec, ok := lookupDriver(dm.config.Type)
	if !ok {
		return fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}

	sqlDB, err := sql.Open(spec.driver, spec.dsn(dm.config))
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, spec.dialect())
	dm.installHooks(db)

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.db, dm.sqlDB = db, sqlDB
	dm.reconnectTries = 0
	for _, fn := range dm.onConnect {
		fn(db)
	}
	if dm.logger != nil {
		dm.logger.Info("Database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	}
	return nil
}

func (dm *defaultDatabaseManager) installHooks(db *bun.DB) {
	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(&slowQueryHook{slowTime: dm.config.SlowQueryTime, logger: dm.logger})
	}
	db.AddQueryHook(NewQueryHook(SQLDebugEnv, nil))
}

func (dm *defaultDatabaseManager) closeLocked() error {
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db, dm.sqlDB = nil, nil
	if dm.logger != nil {
		if err != nil {
			dm.logger.Error("Failed to close database connection", "error", err)
		} else {
			dm.logger.Info("Database connection closed")
		}
	}
	return err
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.stopMonitor != nil {
		dm.stopMonitor()
		dm.stopMonitor = nil
	}
	return dm.closeLocked()
}

// Reconnect replaces the current connection without stopping the health monitor.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.logger != nil {
		dm.logger.Info("Attempting to reconnect to the database")
	}
	if err := dm.closeLocked(); err != nil && dm.logger != nil {
		dm.logger.Warn("Error disconnecting existing connection", "error", err)
	}
	return dm.openLocked(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		status.LastError = "Database not initialized"
		dm.recordStatus(status)
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	err := sqlDB.PingContext(pingCtx)
	cancel()
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy, status.Connected = true, true
	}

	stats := sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections

	dm.recordStatus(status)
	return status
}

func (dm *defaultDatabaseManager) recordStatus(status *HealthStatus) {
	dm.mu.Lock()
	dm.lastStatus = status
	dm.mu.Unlock()
}

func (dm *defaultDatabaseManager) monitor(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		checkCtx, cancel := context.WithTimeout(ctx, 2*healthPingTimeout)
		status := dm.HealthCheck(checkCtx)
		cancel()
		if status.Healthy || !dm.config.EnableReconnect {
			continue
		}
		if !dm.tryReconnect(ctx) {
			return
		}
	}
}

// tryReconnect reports whether the monitor should keep running.
func (dm *defaultDatabaseManager) tryReconnect(ctx context.Context) bool {
	dm.mu.Lock()
	dm.reconnectTries++
	tries := dm.reconnectTries
	dm.mu.Unlock()

	if tries > dm.config.MaxReconnectTries {
		if dm.logger != nil {
			dm.logger.Error("Max reconnect attempts reached, stopping", "tries", tries-1)
		}
		return false
	}
	if dm.logger != nil {
		dm.logger.Info("Starting database reconnect", "try", tries)
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(dm.config.ReconnectInterval):
	}

	reconnectCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := dm.Reconnect(reconnectCtx); err != nil {
		if dm.logger != nil {
			dm.logger.Error("Reconnect failed", "error", err, "try", tries)
		}
	} else if dm.logger != nil {
		dm.logger.Info("Reconnect succeeded")
	}
	return true
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}

	s := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDuration:      s.WaitDuration,
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxIdleTimeClosed: s.MaxIdleTimeClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return ErrNotConnected
	}
	return NewMigrationManager(db, dm.logger).RunMigrations(ctx)
}

// OnConnect registers fn to run on every new connection, including the ones
// opened by Reconnect. fn runs with the manager locked and must not call back
// into it.
func (dm *defaultDatabaseManager) OnConnect(fn func(db *bun.DB)) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.onConnect = append(dm.onConnect, fn)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
