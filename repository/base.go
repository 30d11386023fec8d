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

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db     *bun.DB
	engine *filter.Engine[T]
}

// NewRepository returns a generic repository backed by db. The registry
// decides which columns callers may filter on and which column is the key.
func NewRepository[T any](db *bun.DB, registry *filter.Registry[T], opts ...filter.Option) Repository[T] {
	return &baseRepositoryImpl[T]{db: db, engine: filter.NewEngine(registry, opts...)}
}

func (r *baseRepositoryImpl[T]) Engine() *filter.Engine[T] { return r.engine }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect().Model((*T)(nil)) }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) key() bun.Ident { return bun.Ident(r.engine.Registry().Key()) }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("?TableAlias.? = ?", r.key(), id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) Search(ctx context.Context, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error) {
	return r.engine.Search(ctx, r.db, scope, req)
}

func (r *baseRepositoryImpl[T]) SearchWithTx(ctx context.Context, tx bun.Tx, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error) {
	return r.engine.Search(ctx, tx, scope, req)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.create(ctx, r.db, entity)
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, r.db, fields, duplicateKeys, entity)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.delete(ctx, r.db, id, false)
}

func (r *baseRepositoryImpl[T]) ForceDelete(ctx context.Context, id any) error {
	return r.delete(ctx, r.db, id, true)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error {
	return r.create(ctx, tx, entity)
}

func (r *baseRepositoryImpl[T]) UpsertWithTx(ctx context.Context, tx bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, tx, fields, duplicateKeys, entity)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx bun.Tx, entity *T) error {
	_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error {
	return r.delete(ctx, tx, id, false)
}

func (r *baseRepositoryImpl[T]) create(ctx context.Context, db bun.IDB, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) delete(ctx context.Context, db bun.IDB, id any, force bool) error {
	query := db.NewDelete().Model((*T)(nil)).Where("?TableAlias.? = ?", r.key(), id)
	if force {
		query = query.ForceDelete()
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) multipleUpsert(ctx context.Context, db bun.IDB, fields []string, duplicateKeys []string, entities []*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entities) == 0 {
		return nil
	}

	features := r.db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertWithPostgresqlOrSQLite(ctx, db.NewInsert(), fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertWithMySQL(ctx, db.NewInsert(), fields, entities)
	default:
		return r.upsertFallback(ctx, db, entities)
	}
}

func (r *baseRepositoryImpl[T]) upsertWithMySQL(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	queryArgs := make([]string, 0, len(fields))
	args := make([]any, 0, 2*len(fields))
	for _, field := range fields {
		queryArgs = append(queryArgs, "? = VALUES(?)")
		args = append(args, bun.Ident(field), bun.Ident(field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE "+strings.Join(queryArgs, ", "), args...).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertWithPostgresqlOrSQLite(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{r.engine.Registry().Key()}
	}
	placeholders := make([]string, 0, len(duplicateKeys))
	keys := make([]any, 0, len(duplicateKeys))
	for _, k := range duplicateKeys {
		placeholders = append(placeholders, "?")
		keys = append(keys, bun.Ident(k))
	}
	query := insertQuery.
		Model(&entities).
		On("CONFLICT ("+strings.Join(placeholders, ", ")+") DO UPDATE", keys...)
	for _, field := range fields {
		query = query.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, db bun.IDB, entities []*T) error {
	for _, entity := range entities {
		_, err := db.NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			_, updateErr := db.NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
