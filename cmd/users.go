package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/auth"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts in the users file",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add or update an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		dir, err := rt.directory()
		if err != nil {
			return err
		}
		password, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		if len(password) < 6 {
			return errors.New("password must be at least 6 characters")
		}
		if err := dir.Put(args[0], name, auth.Role(role), password); err != nil {
			return err
		}
		if err := dir.Save(); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s) to %s\n", args[0], role, rt.usersPath())
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		dir, err := rt.directory()
		if err != nil {
			return err
		}
		users := dir.Users()
		if len(users) == 0 {
			fmt.Println("No accounts yet. Add one with: aniquiz users add <email>")
			return nil
		}
		for _, u := range users {
			fmt.Printf("%-32s  %-8s  %s\n", u.Email, u.Role, u.Name)
		}
		return nil
	},
}

func init() {
	usersAddCmd.Flags().String("name", "", "Display name")
	usersAddCmd.Flags().String("role", string(auth.RoleStudent), "Role: student or admin")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
}
