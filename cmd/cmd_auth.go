package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	passwordFlag string
	usernameFlag string
)

// teluhub login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session for this profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := passwordFlag
		if password == "" {
			password = prompt("Password: ")
		}

		if !client.store.Login(cmd.Context(), emailFlag, password) {
			return client.store.LastError()
		}

		user := client.store.User()
		fmt.Printf("Signed in as %s (%s)\n", user.Username, user.Role)
		if cart := client.store.Cart(); cart != nil && len(cart.CartItems) > 0 {
			fmt.Printf("Cart: %d item(s), %s\n", len(cart.CartItems), rupiah(client.store.CartTotal()))
		}
		return nil
	},
}

// teluhub logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client.store.Logout(cmd.Context())
		fmt.Println("Signed out.")
		return nil
	},
}

// teluhub register
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := passwordFlag
		if password == "" {
			password = prompt("Password: ")
		}

		user, err := client.store.Register(cmd.Context(), &model.RegisterRequest{
			Username: usernameFlag,
			Email:    emailFlag,
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Account %s created. Run `teluhub login --email %s` to sign in.\n", user.Username, emailFlag)
		return nil
	},
}

// teluhub whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := client.store.User()
		if user == nil {
			if err := client.store.LastError(); err != nil {
				return err
			}
			return errors.SetCustomError(constant.ErrUnauthorize)
		}

		fmt.Println(renderTable(
			[]string{"ID", "Username", "Email", "Role"},
			[][]string{{fmt.Sprint(user.ID), user.Username, user.Email, string(user.Role)}},
		))
		return nil
	},
}

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	loginCmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Account password (prompted when empty)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Account password (prompted when empty)")
}
