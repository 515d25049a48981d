package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dockboard/frontend/loads"
	"dockboard/frontend/login"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and list the applied ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			names, err := sqlite.AppliedMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSeedAdminCmd(opts *rootOptions) *cobra.Command {
	var email, password, fullName, role string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or reset a user, by default the configured admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if email == "" {
				email = cfg.Admin.Email
			}
			if password == "" {
				password = cfg.Admin.Password
			}
			if fullName == "" {
				fullName = cfg.Admin.FullName
			}
			if err := login.UpsertUser(cmd.Context(), db, email, fullName, role, password); err != nil {
				return fmt.Errorf("seed %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s user (email=%s)\n", role, login.NormalizeEmail(email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email (defaults to admin.email)")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to admin.password)")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", rbac.RoleAdmin, "role: "+strings.Join(rbac.Roles, ", "))
	return cmd
}

func newSeedDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Insert the demo board into an empty loads table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			userID, err := login.UserIDByEmail(cmd.Context(), db, cfg.Admin.Email)
			if err != nil {
				return fmt.Errorf("admin %s not found, run seed-admin first: %w", cfg.Admin.Email, err)
			}
			n, slots, err := loads.InsertDemo(cmd.Context(), db, audit.NewService(), userID)
			if err != nil {
				if errors.Is(err, loads.ErrBoardNotEmpty) {
					return fmt.Errorf("%w; run clear-loads first", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d demo loads in %s\n", n, strings.Join(slots, ", "))
			return nil
		},
	}
}

func newClearLoadsCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-loads",
		Short: "Delete every load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete loads without --yes")
			}
			cfg, db, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			userID, err := login.UserIDByEmail(cmd.Context(), db, cfg.Admin.Email)
			if err != nil {
				return fmt.Errorf("admin %s not found: %w", cfg.Admin.Email, err)
			}
			n, _, err := loads.ClearAll(cmd.Context(), db, audit.NewService(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d loads\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
