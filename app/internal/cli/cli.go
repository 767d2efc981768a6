// Package cli implements recruitctl, the operator tool for the recruitment
// database.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"recruit/tracker/app/internal/config"
	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/repository"
	"recruit/tracker/app/internal/service"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// Opener returns a connected database.
type Opener func(ctx context.Context) (*sqlx.DB, error)

// FromConfig opens the database described by the environment.
func FromConfig(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return repository.Open(ctx, repository.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
}

// RootCmd builds the command tree over open.
func RootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "recruitctl",
		Short:         "Operate the recruitment tracker database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(open), usersCmd(open))
	return root
}

func migrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", color.New(color.FgGreen).Sprint("✓"))
			return nil
		},
	}
}

func usersCmd(open Opener) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "List users and change roles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally of one role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var role *domain.Role
			if v, _ := cmd.Flags().GetString("role"); v != "" {
				r, err := domain.ParseRole(v)
				if err != nil {
					return err
				}
				role = &r
			}
			svc, closeDB, err := usersService(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer closeDB()

			list, err := svc.List(cmd.Context(), role)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTELEGRAM ID\tNAME\tROLE\tACTIVE")
			for _, u := range list {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", u.ID, u.TelegramID, u.DisplayName(), u.Role, active(u.IsActive))
			}
			return w.Flush()
		},
	}
	list.Flags().String("role", "", "only users with this role")

	setRole := &cobra.Command{
		Use:   "set-role <telegram-id> <role>",
		Short: "Change the role of a registered user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tgID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid telegram id %q", args[0])
			}
			svc, closeDB, err := usersService(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := svc.SetRole(cmd.Context(), tgID, domain.Role(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", color.New(color.FgGreen).Sprint("✓"), u.DisplayName(), u.Role)
			return nil
		},
	}

	users.AddCommand(list, setRole)
	return users
}

func usersService(ctx context.Context, open Opener) (*service.UsersService, func(), error) {
	db, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewUsersService(service.NewEnv(db, nil, nil), 0, false)
	return svc, func() { _ = db.Close() }, nil
}

func active(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("yes")
	}
	return color.New(color.FgRed).Sprint("no")
}
