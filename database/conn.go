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
	"fmt"

	"github.com/uptrace/bun"
)

// Process-wide connection used by the CLI and the HTTP server. Tests and
// embedders may ignore it and pass a *bun.DB around explicitly.
var globalFactory *BaseDatabaseFactory

// GetDB returns the current process-wide database, or nil before
// initialization. The handle changes when the manager reconnects, so
// long-lived callers should call GetDB per use instead of keeping the result.
func GetDB() *bun.DB {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.GetDB()
}

func GetDatabaseManager() AbstractDatabaseManager {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.GetManager()
}

// InitDB initializes the process-wide database, migrating when the config asks for it.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	return InitDatabaseWithOptions(ctx, cfg, cfg.MigrateConfig.EnableMigrateOnStartup)
}

// InitDatabaseWithOptions connects, optionally migrates, and registers every
// model from the model registry on each *bun.DB the manager opens.
func InitDatabaseWithOptions(ctx context.Context, cfg *Config, runMigrations bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	factory := NewDatabaseFactory()
	manager, err := factory.CreateFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	manager.OnConnect(func(db *bun.DB) {
		db.RegisterModel(RegisteredModelInstances()...)
	})
	if err := factory.InitializeDatabase(ctx, runMigrations); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	globalFactory = factory
	return factory.GetDB(), nil
}

func CloseDB() error {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.Close()
}

// GetHealthStatus reports the process-wide database health.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory == nil {
		return unhealthy("Database not initialized")
	}
	return globalFactory.GetHealthStatus(ctx)
}

func GetDatabaseStats() *DBStats {
	if globalFactory == nil {
		return &DBStats{}
	}
	return globalFactory.GetStats()
}

// RunMigrations applies pending migrations on the process-wide database.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return ErrNotConnected
	}
	return manager.RunMigrations(ctx)
}
