package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/client/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/rpc"
	"github.com/spf13/cobra"
)

// AuthClient is the part of rpc.Client the commands use.
type AuthClient interface {
	Register(ctx context.Context, name, email, password string) (*rpc.RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*rpc.LoginResponse, error)
	VerifyOTP(ctx context.Context, userID, code string) (*rpc.VerifyOTPResponse, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	Me(ctx context.Context) (*rpc.User, error)
	Ping(ctx context.Context) error
	SetToken(token string)
	Close() error
}

// Dialer opens a client for addr.
type Dialer func(addr string) (AuthClient, error)

func dialRPC(addr string) (AuthClient, error) {
	return rpc.NewClient(addr)
}

type commandContext struct {
	configFlag  *string
	addrFlag    *string
	timeoutFlag *time.Duration

	dial   Dialer
	in     *bufio.Reader
	now    func() time.Time
	config *config.Config

	configOnce sync.Once
	configErr  error
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if cmd.Flags().Changed("addr") {
			cfg.ServerEndpointAddr = *c.addrFlag
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = *c.timeoutFlag
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withClient dials the server and runs fn with the client. Calls made by fn
// should be bounded with callContext.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(client AuthClient) error) error {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return err
	}
	client, err := c.dial(cfg.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.ServerEndpointAddr, err)
	}
	defer client.Close()
	return fn(client)
}

// callContext bounds one remote call by the configured timeout.
func (c *commandContext) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.config.Timeout)
}

