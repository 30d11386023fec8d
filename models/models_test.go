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

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var (
	acme   = uuid.MustParse("6f1c2a44-1b7e-4d8e-9a55-0c1f6f3f7a01")
	globex = uuid.MustParse("0b9d5c1e-77a2-4c3b-8f0e-2d4e6a8b9c02")
)

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	RegisterModels()
	require.NoError(t, database.NewMigrationManager(db, nil).RunMigrations(context.Background()))
	return db
}

func typeOf(instance any) reflect.Type { return reflect.TypeOf(instance).Elem() }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidateRegistries(t *testing.T) {
	db := newDB(t)
	require.NoError(t, ValidateRegistries(db))
}

func TestRegisterModelsOrder(t *testing.T) {
	db := newDB(t)
	RegisterModels()

	var tables []string
	for _, m := range database.GetRegisteredModels() {
		tables = append(tables, db.Table(typeOf(m.Instance())).Name)
	}
	assert.Equal(t, []string{"users", "user_groups", "packages", "messages"}, tables)
}

func TestUserSearchIsClientScoped(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	users := []*User{
		{ClientID: acme, LoginName: "admin@example.com", FirstName: "Ada", Active: true, CreatedAt: day("2024-01-01")},
		{ClientID: acme, LoginName: "ops@example.com", FirstName: "Otto", LoginAttempts: 2, CreatedAt: day("2024-01-02")},
		{ClientID: globex, LoginName: "admin@globex.test", FirstName: "Gia", LoginAttempts: 4, Active: true, CreatedAt: day("2024-01-03")},
	}
	_, err := db.NewInsert().Model(&users).Exec(ctx)
	require.NoError(t, err)

	engine := filter.NewEngine(UserColumns)
	req := types.NewPaginationRequest(0, 10, types.NewFilterCondition("loginName", "startsWith", "admin"))

	page, err := engine.Search(ctx, db, ClientScope(acme), req)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "admin@example.com", page.Data[0].LoginName)

	page, err = engine.Search(ctx, db, ClientScope(globex), req)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, globex, page.Data[0].ClientID)

	attempts := types.NewPaginationRequest(0, 10, types.NewFilterCondition("loginAttempts", ">", "0"))
	page, err = engine.Search(ctx, db, ClientScope(acme), attempts)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "ops@example.com", page.Data[0].LoginName)
}

func TestEntitySearches(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	packages := []*Package{
		{ClientID: acme, TrackingNumber: "TRK-1", Status: "shipped", Weight: 1.25, Fragile: true, ShippedAt: day("2024-03-01")},
		{ClientID: acme, TrackingNumber: "TRK-2", Status: "pending", Weight: 12},
	}
	messages := []*Message{
		{ClientID: acme, Sender: "ada", Recipient: "bob", Subject: "Hello", Priority: 1, Read: true, SentAt: day("2024-02-01")},
		{ClientID: acme, Sender: "bob", Recipient: "ada", Subject: "Re: Hello", Priority: 3},
	}
	groups := []*UserGroup{
		{ClientID: acme, Name: "admins", MemberCount: 2, IsDefault: false},
		{ClientID: acme, Name: "everyone", MemberCount: 40, IsDefault: true},
	}
	for _, rows := range []any{&packages, &messages, &groups} {
		_, err := db.NewInsert().Model(rows).Exec(ctx)
		require.NoError(t, err)
	}
	scope := ClientScope(acme)

	pkgPage, err := filter.NewEngine(PackageColumns).Search(ctx, db, scope,
		types.NewPaginationRequest(0, 10, types.NewFilterCondition("weight", "<", "5"), types.NewFilterCondition("fragile", "is", "true")))
	require.NoError(t, err)
	require.Len(t, pkgPage.Data, 1)
	assert.Equal(t, "TRK-1", pkgPage.Data[0].TrackingNumber)

	msgPage, err := filter.NewEngine(MessageColumns).Search(ctx, db, scope,
		types.NewPaginationRequest(0, 10, types.NewFilterCondition("subject", "contains", "Re:"), types.NewFilterCondition("read", "is", "true")).WithLogic("OR"))
	require.NoError(t, err)
	assert.Equal(t, 2, msgPage.TotalCount)

	groupPage, err := filter.NewEngine(UserGroupColumns).Search(ctx, db, scope,
		types.NewPaginationRequest(0, 10, types.NewFilterCondition("default", "is", "true")))
	require.NoError(t, err)
	require.Len(t, groupPage.Data, 1)
	assert.Equal(t, "everyone", groupPage.Data[0].Name)
}

func TestUserResponse(t *testing.T) {
	u := &User{
		ID:           7,
		ClientID:     acme,
		LoginName:    "admin@example.com",
		PasswordHash: "secret",
		Active:       true,
		CreatedAt:    day("2024-01-01"),
	}
	resp := NewUserResponse(u)
	assert.Nil(t, resp.LastLoginAt)
	assert.False(t, resp.Deleted)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "lastLoginAt")
	assert.Contains(t, string(b), `"loginName":"admin@example.com"`)

	u.DeletedAt = day("2024-02-01")
	u.LastLoginAt = day("2024-01-15")
	resp = NewUserResponse(u)
	assert.True(t, resp.Deleted)
	require.NotNil(t, resp.LastLoginAt)
	assert.Equal(t, day("2024-01-15"), *resp.LastLoginAt)
}

func TestPackageResponseDimensions(t *testing.T) {
	resp := NewPackageResponse(&Package{Length: 1, Width: 2, Height: 3})
	assert.Equal(t, [3]float64{1, 2, 3}, resp.Dimensions)
	assert.Nil(t, resp.ShippedAt)
}
