package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// verify exchanges a one-time code for a session and stores it.
func (c *commandContext) verify(cmd *cobra.Command, client AuthClient, userID, code string) error {
	cctx, cancel := c.callContext(cmd)
	defer cancel()

	resp, err := client.VerifyOTP(cctx, userID, code)
	if err != nil {
		return err
	}
	if err := saveSession(c.config.SessionFile, &Session{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email, password and an emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			email, err := valueOrPrompt(ctx.in, emailFlag, "Email", w)
			if err != nil {
				return err
			}
			password, err := GetPassword(ctx.in, "Password", w)
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				cctx, cancel := ctx.callContext(cmd)
				resp, err := client.Login(cctx, email, password)
				cancel()
				if err != nil {
					return err
				}
				fmt.Fprintln(w, resp.Message)

				// no timeout while the user reads their mail
				code, err := GetSimpleText(ctx.in, "Enter the 6-digit code", w)
				if err != nil {
					return err
				}
				return ctx.verify(cmd, client, resp.UserID, code)
			})
		},
	}

	cmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var userFlag, codeFlag string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Complete a login with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			userID, err := valueOrPrompt(ctx.in, userFlag, "User id", w)
			if err != nil {
				return err
			}
			code, err := valueOrPrompt(ctx.in, codeFlag, "Code", w)
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				return ctx.verify(cmd, client, userID, code)
			})
		},
	}

	cmd.Flags().StringVar(&userFlag, "user-id", "", "User id printed by login")
	cmd.Flags().StringVar(&codeFlag, "code", "", "Code from the email")
	return cmd
}
