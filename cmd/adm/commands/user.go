// Package commands provides the subcommands for the admin CLI tool.
package commands

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"quizgen/internal/observability"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"

	"github.com/spf13/cobra"
)

// UserCommands returns the user management commands
func UserCommands(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long: `User management commands for the quiz service.

Available commands:
  list           - List all users
  create         - Create a new user
  reset-password - Reset password for a specific user`,
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE:  runListUsers(userService),
	})
	userCmd.AddCommand(&cobra.Command{
		Use:   "create [name] [email]",
		Short: "Create a new user",
		Long:  `Create a new user with the given name and email. The password is read from the terminal.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runCreateUser(userService, logger),
	})
	userCmd.AddCommand(&cobra.Command{
		Use:   "reset-password [email]",
		Short: "Reset password for a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runResetPassword(userService, logger),
	})

	return userCmd
}

func runListUsers(userService *services.UserService) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		users, err := userService.GetAllUsers(ctx)
		if err != nil {
			return contextutils.WrapError(err, "failed to get users")
		}

		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("%-5s %-25s %-35s %-12s\n", "ID", "Name", "Email", "Created")
		fmt.Println(strings.Repeat("-", 80))
		for _, user := range users {
			fmt.Printf("%-5d %-25s %-35s %-12s\n",
				user.ID,
				user.Name,
				user.Email,
				user.CreatedAt.Format("2006-01-02"),
			)
		}
		return nil
	}
}

func runCreateUser(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		name, email := args[0], args[1]

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return contextutils.ErrorWithContextf("passwords do not match")
		}

		user, err := userService.CreateUser(ctx, name, email, password)
		if err != nil {
			logger.Error(ctx, "Failed to create user", err, map[string]interface{}{"email": email})
			return contextutils.WrapError(err, "failed to create user")
		}

		fmt.Printf("User %d (%s) created.\n", user.ID, user.Email)
		return nil
	}
}

func runResetPassword(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		email := args[0]

		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return contextutils.ErrorWithContextf("passwords do not match")
		}

		if err := userService.ResetPassword(ctx, email, password); err != nil {
			logger.Error(ctx, "Failed to reset password", err, map[string]interface{}{"email": email})
			return contextutils.WrapError(err, "failed to reset password")
		}

		fmt.Printf("Password for %s updated.\n", email)
		return nil
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", contextutils.WrapError(err, "failed to read password")
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", contextutils.ErrorWithContextf("password cannot be empty")
	}
	return password, nil
}
