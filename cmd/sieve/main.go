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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tomoncle/sieve/config"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/httpapi"
	"github.com/tomoncle/sieve/models"
	"github.com/tomoncle/sieve/types"
	"github.com/tomoncle/sieve/utils"
	"github.com/uptrace/bun"
)

var logger = utils.NewLogger("SIEVE")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()
	root := &cobra.Command{
		Use:          "sieve",
		Short:        "Filtered, paginated search over tenant scoped entities",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			loaded.Apply()
			*cfg = *loaded
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c",
		utils.EnvDefaultString("SIEVE_CONFIG", "sieve.yaml"), "path to the YAML configuration file")

	root.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg), newSearchCmd(cfg))
	return root
}

func openDB(ctx context.Context, cfg *config.Config, migrate bool) (*bun.DB, error) {
	models.RegisterModels()
	db, err := database.InitDatabaseWithOptions(ctx, &cfg.Database, migrate)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateRegistries(db); err != nil {
		_ = database.CloseDB()
		return nil, err
	}
	return db, nil
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := openDB(ctx, cfg, cfg.Database.MigrateConfig.EnableMigrateOnStartup); err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      httpapi.NewRouter(httpapi.GlobalDB, httpapi.Options{MaxPageSize: cfg.Server.MaxPageSize}),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Infof("listening on %s", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables of every entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			applied, err := database.NewMigrationManager(db, database.GetLogger()).GetAppliedMigrations(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}

type searchFlags struct {
	clientID       string
	start          int
	end            int
	filters        []string
	logic          string
	includeDeleted bool
}

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:       "search <users|packages|messages|user-groups>",
		Short:     "Run one search and print the page as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"users", "packages", "messages", "user-groups"},
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := uuid.Parse(f.clientID)
			if err != nil {
				return fmt.Errorf("invalid --client-id: %w", err)
			}
			req, err := f.request()
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			ctx, out := cmd.Context(), cmd.OutOrStdout()
			scope := models.ClientScope(clientID)
			opts := engineOptions(cfg)
			switch args[0] {
			case "users":
				return search(ctx, out, db, filter.NewEngine(models.UserColumns, opts...), scope, req, models.NewUserResponse)
			case "packages":
				return search(ctx, out, db, filter.NewEngine(models.PackageColumns, opts...), scope, req, models.NewPackageResponse)
			case "messages":
				return search(ctx, out, db, filter.NewEngine(models.MessageColumns, opts...), scope, req, models.NewMessageResponse)
			case "user-groups":
				return search(ctx, out, db, filter.NewEngine(models.UserGroupColumns, opts...), scope, req, models.NewUserGroupResponse)
			default:
				return fmt.Errorf("unknown entity %q", args[0])
			}
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.clientID, "client-id", "", "client whose rows are searched")
	flags.IntVar(&f.start, "start", 0, "first row of the window, inclusive")
	flags.IntVar(&f.end, "end", 10, "last row of the window, exclusive")
	flags.StringArrayVar(&f.filters, "filter", nil, "filter as column:operator:value, repeatable")
	flags.StringVar(&f.logic, "logic", string(types.LogicAnd), "AND or OR")
	flags.BoolVar(&f.includeDeleted, "include-deleted", false, "include soft deleted rows")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}

func (f searchFlags) request() (*types.PaginationRequest, error) {
	conds := make([]types.FilterCondition, 0, len(f.filters))
	for _, raw := range f.filters {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --filter %q, want column:operator:value", raw)
		}
		conds = append(conds, types.NewFilterCondition(parts[0], parts[1], parts[2]))
	}
	req := types.NewPaginationRequest(f.start, f.end, conds...).WithLogic(f.logic)
	if f.includeDeleted {
		req.WithDeleted()
	}
	return req, nil
}

// engineOptions applies the same page size cap as the HTTP API.
func engineOptions(cfg *config.Config) []filter.Option {
	if cfg.Server.MaxPageSize <= 0 {
		return nil
	}
	return []filter.Option{filter.WithMaxPageSize(cfg.Server.MaxPageSize)}
}

func search[T any, R any](ctx context.Context, out io.Writer, db bun.IDB, engine *filter.Engine[T],
	scope filter.Scope, req *types.PaginationRequest, mapper func(*T) R) error {
	page, err := engine.Search(ctx, db, scope, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(types.MapPage(page, mapper))
}
