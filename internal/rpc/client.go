package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Client calls AuthService over a single connection. After a successful
// VerifyOTP the session token is attached to every later call.
type Client struct {
	conn        *grpc.ClientConn
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.accessToken != "" {
		ctx = withAccessToken(ctx, c.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewClient connects to target. Extra dial options are appended after the
// defaults, so tests can swap the dialer.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{}
	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dial...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// SetToken replaces the session token sent with each call.
func (c *Client) SetToken(token string) { c.accessToken = token }

func (c *Client) Token() string { return c.accessToken }

func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.invoke(ctx, MethodRegister, &RegisterRequest{Name: name, Email: email, Password: password}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, MethodLogin, &LoginRequest{Email: email, Password: password}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, userID, code string) (*VerifyOTPResponse, error) {
	out := new(VerifyOTPResponse)
	if err := c.invoke(ctx, MethodVerifyOTP, &VerifyOTPRequest{UserID: userID, Code: code}, out); err != nil {
		return nil, err
	}
	c.accessToken = out.Token
	return out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	out := new(MessageResponse)
	if err := c.invoke(ctx, MethodForgotPassword, &ForgotPasswordRequest{Email: email}, out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	out := new(MessageResponse)
	if err := c.invoke(ctx, MethodResetPassword, &ResetPasswordRequest{Token: token, NewPassword: newPassword}, out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	out := new(MeResponse)
	if err := c.invoke(ctx, MethodMe, &MeRequest{}, out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Ping(ctx context.Context) error {
	out := new(PingResponse)
	if err := c.invoke(ctx, MethodPing, &PingRequest{}, out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError keeps the server's message so the caller can show it.
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return errors.New(st.Message())
	}
}
