package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errPasswordMismatch = errors.New("passwords do not match")

// newPassword asks for a password twice.
func (c *commandContext) newPassword(cmd *cobra.Command, prompt string) (string, error) {
	w := cmd.OutOrStdout()
	pw, err := GetPassword(c.in, prompt, w)
	if err != nil {
		return "", err
	}
	confirm, err := GetPassword(c.in, "Repeat password", w)
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errPasswordMismatch
	}
	return pw, nil
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var nameFlag, emailFlag string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			name, err := valueOrPrompt(ctx.in, nameFlag, "Name", w)
			if err != nil {
				return err
			}
			email, err := valueOrPrompt(ctx.in, emailFlag, "Email", w)
			if err != nil {
				return err
			}
			password, err := ctx.newPassword(cmd, "Password")
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				cctx, cancel := ctx.callContext(cmd)
				defer cancel()

				resp, err := client.Register(cctx, name, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, resp.Message)
				fmt.Fprintln(w, "Run `streamforge login` to sign in.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "Display name")
	cmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
	return cmd
}
