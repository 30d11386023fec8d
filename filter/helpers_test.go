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

package filter

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Tenant        string    `bun:"tenant,notnull"`
	LoginName     string    `bun:"login_name,notnull"`
	FirstName     string    `bun:"first_name"`
	LastName      string    `bun:"last_name"`
	LoginAttempts int       `bun:"login_attempts,notnull"`
	Score         float64   `bun:"score"`
	Active        bool      `bun:"active,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	DeletedAt     time.Time `bun:"deleted_at,soft_delete,nullzero"`
}

// auditEntry has no soft delete column.
type auditEntry struct {
	bun.BaseModel `bun:"table:audit_entries,alias:ae"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Tenant string `bun:"tenant,notnull"`
	Action string `bun:"action,notnull"`
}

var accountColumns = NewRegistry[account]("account",
	String("loginName", "login_name"),
	String("firstName", "first_name"),
	String("lastName", "last_name"),
	Number("loginAttempts", "login_attempts"),
	Number("score", "score"),
	Boolean("active", "active"),
	Date("createdAt", "created_at"),
)

var auditColumns = NewRegistry[auditEntry]("audit", String("action", "action"))

var tenantOne = ScopeEq("tenant", "t1")

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// seedAccounts are inserted in order, so their ids are 1..5.
func seedAccounts() []*account {
	return []*account{
		{Tenant: "t1", LoginName: "admin@example.com", FirstName: "Ada", LastName: "Lovelace", LoginAttempts: 0, Score: 1.5, Active: true, CreatedAt: at("2024-05-01T09:00:00Z")},
		{Tenant: "t1", LoginName: "bob@example.com", FirstName: "Bob", LastName: "a*b", LoginAttempts: 3, Score: 2, Active: false, CreatedAt: at("2024-05-01T18:30:00Z")},
		{Tenant: "t1", LoginName: "carol@Example.com", FirstName: "Carol", LastName: "axb", LoginAttempts: 1, Score: 7.25, Active: true, CreatedAt: at("2024-05-02T08:00:00Z")},
		{Tenant: "t1", LoginName: "dave@example.com", FirstName: "Dave", LastName: "Deleted", LoginAttempts: 5, Score: 0, Active: true, CreatedAt: at("2024-04-30T23:59:00Z")},
		{Tenant: "t2", LoginName: "admin@example.com", FirstName: "Eve", LastName: "Other", LoginAttempts: 9, Score: 3, Active: true, CreatedAt: at("2024-05-01T10:00:00Z")},
	}
}

// newSQLiteDB returns an isolated in-memory database holding seedAccounts,
// with dave (id 4) soft deleted.
func newSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range []any{(*account)(nil), (*auditEntry)(nil)} {
		_, err = db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	rows := seedAccounts()
	_, err = db.NewInsert().Model(&rows).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewDelete().Model((*account)(nil)).Where("id = ?", 4).Exec(ctx)
	require.NoError(t, err)

	audits := []*auditEntry{{Tenant: "t1", Action: "login"}, {Tenant: "t1", Action: "logout"}, {Tenant: "t2", Action: "login"}}
	_, err = db.NewInsert().Model(&audits).Exec(ctx)
	require.NoError(t, err)
	return db
}

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func loginNames(rows []*account) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.LoginName)
	}
	return out
}

func ids(rows []*account) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
