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
	"reflect"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:sieve_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// MigrationManager runs every registered migration exactly once.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	models []SQLModel
	items  []MigrationItem
}

// NewMigrationManager returns a manager creating the tables of the models
// registered so far, plus their tenant indexes.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	mm := &MigrationManager{db: db, logger: logger, models: GetRegisteredModels()}
	mm.Register(MigrationItem{
		Version:     "0001",
		Name:        "create_base_tables",
		Description: "create the tables of all registered models",
		Up:          mm.createBaseTables,
	})
	mm.Register(MigrationItem{
		Version:     "0002",
		Name:        "create_client_indexes",
		Description: "index client_id on every tenant scoped table",
		Up:          mm.createClientIndexes,
	})
	return mm
}

// Register appends a migration. Versions are applied in ascending order.
func (mm *MigrationManager) Register(item MigrationItem) {
	mm.items = append(mm.items, item)
}

func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	EnableBunSqlSilent(true)
	defer EnableBunSqlSilent(false)

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[string]struct{}, len(applied))
	for _, m := range applied {
		done[m.Version] = struct{}{}
	}

	items := make([]MigrationItem, len(mm.items))
	copy(items, mm.items)
	sort.Slice(items, func(i, j int) bool { return items[i].Version < items[j].Version })

	for _, item := range items {
		if _, ok := done[item.Version]; ok {
			continue
		}
		if err := mm.runMigration(ctx, item); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", item.Version, err)
		}
	}
	return nil
}

func (mm *MigrationManager) runMigration(ctx context.Context, item MigrationItem) error {
	err := mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := item.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     item.Version,
			Name:        item.Name,
			Description: item.Description,
			AppliedAt:   time.Now().UTC(),
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if mm.logger != nil {
		mm.logger.Info("Migration applied", "version", item.Version, "name", item.Name)
	}
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range mm.models {
		if _, err := db.NewCreateTable().Model(model.Instance()).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %s: %w", mm.table(model).Name, err)
		}
	}
	return nil
}

func (mm *MigrationManager) createClientIndexes(ctx context.Context, db bun.IDB) error {
	for _, model := range mm.models {
		table := mm.table(model)
		if !table.HasField("client_id") {
			continue
		}
		_, err := db.NewCreateIndex().
			Model(model.Instance()).
			Index(table.Name + "_client_id_idx").
			Column("client_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create client index on %s: %w", table.Name, err)
		}
	}
	return nil
}

func (mm *MigrationManager) table(model SQLModel) *schema.Table {
	return mm.db.Table(reflect.TypeOf(model.Instance()).Elem())
}

// GetAppliedMigrations returns the applied migrations ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().Model(&migrations).Order("version ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return migrations, nil
}
