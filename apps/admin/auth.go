package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
)

func (cli *commandLine) loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uname := core.CleanString(username, true /* lower */)
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}

			_, _ = fmt.Fprint(cli.errOut, "Enter password: ")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			_, _ = fmt.Fprintln(cli.errOut)
			if err != nil {
				return errors.Wrap(err, "reading password")
			}
			if len(pwd) == 0 {
				_ = cmd.Usage()
				return errHelp
			}

			token, err := cli.auth.Login(cmd.Context(), restapi.Credentials{Username: uname, Password: string(pwd)})
			if err != nil {
				if err == restapi.ErrInvalidCredentials {
					cli.notifier.Notify(core.Failure("Invalid username or password."))
				}
				return err
			}
			sess, err := cli.tokens.Save(token)
			if err != nil {
				return err
			}
			cli.notifier.Notify(core.Success(fmt.Sprintf("Logged in as %s.", displayName(sess))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.tokens.Clear(); err != nil {
				return err
			}
			cli.notifier.Notify(core.Success("Logged out."))
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := cli.tokens.Session()
			if err != nil {
				return err
			}
			type whoami struct {
				UserID    string `json:"userId"`
				Username  string `json:"username,omitempty"`
				Email     string `json:"email,omitempty"`
				ExpiresAt string `json:"expiresAt,omitempty"`
			}
			out := whoami{UserID: sess.UserID, Username: sess.Username, Email: sess.Email}
			if !sess.ExpiresAt.IsZero() {
				out.ExpiresAt = sess.ExpiresAt.Format("2006-01-02 15:04 MST")
			}
			return cli.print(out, func(w io.Writer) {
				fprintRow(w, "USER", "EMAIL", "EXPIRES")
				fprintRow(w, displayName(sess), orDash(out.Email), orDash(out.ExpiresAt))
			})
		},
	}
}

func displayName(sess core.Session) string {
	switch {
	case sess.Username != "":
		return sess.Username
	case sess.Email != "":
		return sess.Email
	}
	return sess.UserID
}
