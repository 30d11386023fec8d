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

type UserGroup struct {
	bun.BaseModel `bun:"table:user_groups,alias:ug"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID    uuid.UUID `bun:"client_id,type:varchar(36),notnull" json:"client_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	MemberCount int       `bun:"member_count,notnull" json:"member_count"`
	IsDefault   bool      `bun:"is_default,notnull" json:"is_default"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`
}

// UserGroupColumns is the filter whitelist of user groups.
var UserGroupColumns = filter.NewRegistry[UserGroup]("user-group",
	filter.String("name", "name"),
	filter.String("description", "description"),
	filter.Number("memberCount", "member_count"),
	filter.Boolean("default", "is_default"),
	filter.Date("createdAt", "created_at"),
)

type UserGroupResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberCount int       `json:"memberCount"`
	Default     bool      `json:"default"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewUserGroupResponse(g *UserGroup) UserGroupResponse {
	return UserGroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		MemberCount: g.MemberCount,
		Default:     g.IsDefault,
		CreatedAt:   g.CreatedAt,
	}
}
