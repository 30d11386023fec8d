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

type Package struct {
	bun.BaseModel `bun:"table:packages,alias:p"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID       uuid.UUID `bun:"client_id,type:varchar(36),notnull" json:"client_id"`
	TrackingNumber string    `bun:"tracking_number,notnull,unique" json:"tracking_number"`
	Description    string    `bun:"description" json:"description"`
	Status         string    `bun:"status,notnull" json:"status"`
	Weight         float64   `bun:"weight" json:"weight"`
	Length         float64   `bun:"length" json:"length"`
	Width          float64   `bun:"width" json:"width"`
	Height         float64   `bun:"height" json:"height"`
	Fragile        bool      `bun:"fragile,notnull" json:"fragile"`
	ShippedAt      time.Time `bun:"shipped_at,nullzero" json:"shipped_at"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	DeletedAt      time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`
}

// PackageColumns is the filter whitelist of packages.
var PackageColumns = filter.NewRegistry[Package]("package",
	filter.String("trackingNumber", "tracking_number"),
	filter.String("description", "description"),
	filter.String("status", "status"),
	filter.Number("weight", "weight"),
	filter.Number("length", "length"),
	filter.Number("width", "width"),
	filter.Number("height", "height"),
	filter.Boolean("fragile", "fragile"),
	filter.Date("shippedAt", "shipped_at"),
	filter.Date("createdAt", "created_at"),
)

type PackageResponse struct {
	ID             int64      `json:"id"`
	TrackingNumber string     `json:"trackingNumber"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Weight         float64    `json:"weight"`
	Dimensions     [3]float64 `json:"dimensions"`
	Fragile        bool       `json:"fragile"`
	ShippedAt      *time.Time `json:"shippedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func NewPackageResponse(p *Package) PackageResponse {
	return PackageResponse{
		ID:             p.ID,
		TrackingNumber: p.TrackingNumber,
		Description:    p.Description,
		Status:         p.Status,
		Weight:         p.Weight,
		Dimensions:     [3]float64{p.Length, p.Width, p.Height},
		Fragile:        p.Fragile,
		ShippedAt:      optionalTime(p.ShippedAt),
		CreatedAt:      p.CreatedAt,
	}
}
