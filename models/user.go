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
	"time"

	"github.com/google/uuid"
	"github.com/tomoncle/sieve/filter"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID      uuid.UUID `bun:"client_id,type:varchar(36),notnull" json:"client_id"`
	LoginName     string    `bun:"login_name,notnull,unique" json:"login_name"`
	FirstName     string    `bun:"first_name" json:"first_name"`
	LastName      string    `bun:"last_name" json:"last_name"`
	Email         string    `bun:"email" json:"email"`
	PasswordHash  string    `bun:"password_hash" json:"-"`
	LoginAttempts int       `bun:"login_attempts,notnull" json:"login_attempts"`
	Active        bool      `bun:"active,notnull" json:"active"`
	LastLoginAt   time.Time `bun:"last_login_at,nullzero" json:"last_login_at"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	DeletedAt     time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`
}

// UserColumns is the filter whitelist of users.
var UserColumns = filter.NewRegistry[User]("user",
	filter.String("loginName", "login_name"),
	filter.String("firstName", "first_name"),
	filter.String("lastName", "last_name"),
	filter.String("email", "email"),
	filter.Number("loginAttempts", "login_attempts"),
	filter.Boolean("active", "active"),
	filter.Date("lastLoginAt", "last_login_at"),
	filter.Date("createdAt", "created_at"),
)

type UserResponse struct {
	ID            int64      `json:"id"`
	LoginName     string     `json:"loginName"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         string     `json:"email"`
	LoginAttempts int        `json:"loginAttempts"`
	Active        bool       `json:"active"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	Deleted       bool       `json:"deleted,omitempty"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		LoginName:     u.LoginName,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		LoginAttempts: u.LoginAttempts,
		Active:        u.Active,
		LastLoginAt:   optionalTime(u.LastLoginAt),
		CreatedAt:     u.CreatedAt,
		Deleted:       !u.DeletedAt.IsZero(),
	}
}
