package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newForgotCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Email a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			email, err := valueOrPrompt(ctx.in, emailFlag, "Email", w)
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				cctx, cancel := ctx.callContext(cmd)
				defer cancel()

				msg, err := client.ForgotPassword(cctx, email)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with the token from a reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			token, err := valueOrPrompt(ctx.in, tokenFlag, "Reset token", w)
			if err != nil {
				return err
			}
			password, err := ctx.newPassword(cmd, "New password")
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				cctx, cancel := ctx.callContext(cmd)
				defer cancel()

				msg, err := client.ResetPassword(cctx, token, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "Token from the reset link")
	return cmd
}
