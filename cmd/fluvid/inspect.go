package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"

	"github.com/spf13/cobra"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Print the role permission table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printPermissions(cmd.OutOrStdout())
	},
}

var showPasswords bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the seeded demo accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printUsers(cmd.OutOrStdout(), showPasswords)
	},
}

func init() {
	usersCmd.Flags().BoolVar(&showPasswords, "show-passwords", false, "include demo passwords in the output")
}

func printPermissions(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := []string{"PERMISSION"}
	for _, role := range domain.Roles {
		header = append(header, strings.ToUpper(string(role)))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, perm := range domain.Permissions() {
		row := []string{string(perm)}
		for _, role := range domain.Roles {
			mark := "-"
			if domain.RoleHasPermission(role, perm) {
				mark = "yes"
			}
			row = append(row, mark)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func printUsers(out io.Writer, withPasswords bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if withPasswords {
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tPREMIUM\tPASSWORD")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tPREMIUM")
	}
	for _, seed := range fixtures.Users() {
		u := seed.User
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%t", u.ID, u.Name, u.Email, u.Role, u.Premium)
		if withPasswords {
			line += "\t" + seed.Password
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
