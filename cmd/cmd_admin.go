package main

import (
	"fmt"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator tools",
}

// teluhub admin users
var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every account",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.users.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{fmt.Sprint(u.ID), u.Username, u.Email, string(u.Role)})
		}
		fmt.Println(renderTable([]string{"ID", "Username", "Email", "Role"}, rows))
		return nil
	},
}

// teluhub admin promote <user-id> <role>
var adminPromoteCmd = &cobra.Command{
	Use:   "promote <user-id> <role>",
	Short: "Change an account's role (user, seller, admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		user, err := client.users.Promote(cmd.Context(), id, &model.PromoteRequest{Role: constant.Role(args[1])})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s.\n", user.Username, user.Role)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminPromoteCmd)
}
