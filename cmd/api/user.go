package main

import (
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage storefront users",
	}

	var email, name, role string
	upsertCmd := &cobra.Command{
		Use:   "upsert <id>",
		Short: "Create or update a user, e.g. to bootstrap the first admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := model.ParseRole(role)
			if !ok {
				return model.ErrInvalidRole
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			pool, err := connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			user := &model.User{ID: args[0], Email: email, Name: name, Role: r}
			if err := repository.NewUserRepository(pool, logger).Upsert(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to upsert user: %w", err)
			}

			logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user saved")
			return nil
		},
	}
	upsertCmd.Flags().StringVar(&email, "email", "", "Email address")
	upsertCmd.Flags().StringVar(&name, "name", "", "Display name")
	upsertCmd.Flags().StringVar(&role, "role", string(model.RoleCustomer), "Role (customer or admin)")

	cmd.AddCommand(upsertCmd)
	return cmd
}
