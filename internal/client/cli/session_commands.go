package cli

import (
	"errors"
	"fmt"

	"github.com/Silas-Hakuzwimana/streamforge/internal/rpc"
	"github.com/spf13/cobra"
)

func newMeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			sess, err := loadSession(cfg.SessionFile, ctx.now())
			if err != nil {
				return err
			}

			return ctx.withClient(cmd, func(client AuthClient) error {
				client.SetToken(sess.Token)

				cctx, cancel := ctx.callContext(cmd)
				defer cancel()

				user, err := client.Me(cctx)
				if errors.Is(err, rpc.ErrUnauthorized) {
					_ = removeSession(cfg.SessionFile)
					return ErrNoSession
				}
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "ID:    %s\n", user.ID)
				fmt.Fprintf(w, "Name:  %s\n", user.Name)
				fmt.Fprintf(w, "Email: %s\n", user.Email)
				fmt.Fprintf(w, "Role:  %s\n", user.Role)
				return nil
			})
		},
	}
}

// Sessions are stateless on the server, so logout only forgets the token.
func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if err := removeSession(cfg.SessionFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully")
			return nil
		},
	}
}

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(client AuthClient) error {
				cctx, cancel := ctx.callContext(cmd)
				defer cancel()

				if err := client.Ping(cctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}
}
