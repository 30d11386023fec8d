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
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (l *recordingLogger) SetLevel(LogLevel) {}

func (l *recordingLogger) Debug(string, ...interface{}) {}

func (l *recordingLogger) Info(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(string, ...interface{}) {}

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID       int64     `bun:"id,pk,autoincrement"`
	ClientID string    `bun:"client_id,notnull"`
	Name     string    `bun:"name"`
	Created  time.Time `bun:"created,nullzero"`
}

type gadget struct {
	bun.BaseModel `bun:"table:gadgets,alias:g"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

func sqliteConfig(t *testing.T) *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.DBName = filepath.Join(t.TempDir(), "sieve")
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0
	return cfg
}

func connect(t *testing.T) *bun.DB {
	t.Helper()
	manager := NewDatabaseManager(sqliteConfig(t))
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager.GetDB()
}

func TestMigrationsRunOnce(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	logger := &recordingLogger{}

	mm := NewMigrationManager(db, logger)
	mm.models = []SQLModel{NewModelAdapter((*widget)(nil), 1), NewModelAdapter((*gadget)(nil), 2)}
	calls := 0
	mm.Register(MigrationItem{
		Version: "0003",
		Name:    "seed_widgets",
		Up: func(ctx context.Context, db bun.IDB) error {
			calls++
			_, err := db.NewInsert().Model(&widget{ClientID: "c1", Name: "first"}).Exec(ctx)
			return err
		},
	})

	require.NoError(t, mm.RunMigrations(ctx))
	require.NoError(t, mm.RunMigrations(ctx))
	assert.Equal(t, 1, calls)
	assert.Len(t, logger.infos, 3)

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	var versions []string
	for _, m := range applied {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []string{"0001", "0002", "0003"}, versions)

	count, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	mm.models = nil
	boom := errors.New("boom")
	mm.Register(MigrationItem{Version: "0009", Name: "explode", Up: func(context.Context, bun.IDB) error { return boom }})

	err := mm.RunMigrations(ctx)
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "0009")

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}

func TestModelRegistryOrder(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter((*gadget)(nil), 20))
	r.Register(NewModelAdapter((*widget)(nil), 10))
	r.Register(NewModelAdapter((*gadget)(nil), 5))

	models := r.Models()
	require.Len(t, models, 2)
	assert.IsType(t, (*widget)(nil), models[0].Instance())
	assert.IsType(t, (*gadget)(nil), models[1].Instance())
}

func TestQueryHook(t *testing.T) {
	var buf bytes.Buffer
	hook := NewQueryHook("SIEVE_TEST_SQL_DEBUG", &buf)
	event := &bun.QueryEvent{Query: `SELECT count(*) FROM "users"`, StartTime: time.Now()}

	hook.AfterQuery(context.Background(), event)
	assert.Empty(t, buf.String())

	t.Setenv("SIEVE_TEST_SQL_DEBUG", "1")
	hook.AfterQuery(context.Background(), event)
	assert.Empty(t, buf.String(), "successful queries only print at level 2")

	event.Err = errors.New("no such table: users")
	hook.AfterQuery(context.Background(), event)
	assert.Contains(t, buf.String(), `FROM "users"`)
	assert.Contains(t, buf.String(), "no such table")

	buf.Reset()
	EnableBunSqlSilent(true)
	hook.AfterQuery(context.Background(), event)
	EnableBunSqlSilent(false)
	assert.Empty(t, buf.String())
}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := &slowQueryHook{slowTime: time.Millisecond, logger: logger}

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	assert.Empty(t, logger.warns)

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now().Add(-time.Second)})
	assert.Equal(t, []string{"Database slow query detected"}, logger.warns)
}
