package cli

import (
	"bufio"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the streamforge command tree. Prompts read from in.
// A nil dial uses the gRPC client.
func NewRootCommand(in io.Reader, dial Dialer) *cobra.Command {
	var (
		configFlag  string
		addrFlag    string
		timeoutFlag time.Duration
	)
	if dial == nil {
		dial = dialRPC
	}

	ctx := &commandContext{
		configFlag:  &configFlag,
		addrFlag:    &addrFlag,
		timeoutFlag: &timeoutFlag,
		dial:        dial,
		in:          bufio.NewReader(in),
		now:         time.Now,
	}

	rootCmd := &cobra.Command{
		Use:           "streamforge",
		Short:         "StreamForge account client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&addrFlag, "addr", "a", "", "Server gRPC address (host:port)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "Timeout for each server call")

	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newForgotCommand(ctx))
	rootCmd.AddCommand(newResetCommand(ctx))
	rootCmd.AddCommand(newMeCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newPingCommand(ctx))

	return rootCmd
}
