package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/config"
	"github.com/example/classroom-reserve/internal/persistence"
)

// newCreateUserCmd bootstraps accounts from the command line. The first
// administrator has to come from somewhere other than the admin-only HTTP
// surface.
func newCreateUserCmd(configPath *string) *cobra.Command {
	var name, email, password, role, department string

	c := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user account directly in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			users := application.NewUserService(st, hashParams(cfg), uuid.NewString, time.Now, zap.NewNop())
			user, err := users.CreateUser(ctx, application.CreateUserParams{
				Principal: application.Principal{UserID: "bootstrap", IsAdmin: true},
				Input: application.UserInput{
					Name:       name,
					Email:      email,
					Password:   password,
					Role:       role,
					Department: department,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "created %s user %q (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&role, "role", string(persistence.RoleProfessor), "role: professor or admin")
	c.Flags().StringVar(&department, "department", "", "department")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
