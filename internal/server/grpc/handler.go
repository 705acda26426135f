package grpc

import (
	"context"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/rpc"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type handler struct {
	auth   *services.AuthService
	logger logging.Logger
}

var _ rpc.AuthServiceServer = (*handler)(nil)

// codeFor maps an error kind to a gRPC status code.
func codeFor(kind common.Kind) codes.Code {
	switch kind {
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindConflict:
		return codes.AlreadyExists
	case common.KindAuth:
		return codes.Unauthenticated
	case common.KindNotFound:
		return codes.NotFound
	case common.KindTransient:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// toStatus converts err to a status carrying only the caller-visible message.
func toStatus(err error) error {
	ae := common.AsAppError(err)
	return status.Error(codeFor(ae.Kind), ae.Message)
}

func (h *handler) fail(ctx context.Context, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal || status.Code(st) == codes.Unavailable {
		h.logger.Error(ctx, "grpc request failed", "error", err)
	}
	return st
}

func toUser(u *models.UserView) rpc.User {
	return rpc.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (h *handler) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	user, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	h.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &rpc.RegisterResponse{UserID: user.ID, Message: "User registered successfully"}, nil
}

func (h *handler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	userID, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.LoginResponse{UserID: userID, Message: "OTP sent to your email"}, nil
}

func (h *handler) VerifyOTP(ctx context.Context, req *rpc.VerifyOTPRequest) (*rpc.VerifyOTPResponse, error) {
	sess, err := h.auth.VerifyOTP(ctx, req.UserID, req.Code)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.VerifyOTPResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUser(sess.User)}, nil
}

func (h *handler) ForgotPassword(ctx context.Context, req *rpc.ForgotPasswordRequest) (*rpc.MessageResponse, error) {
	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.MessageResponse{Message: "Password reset email sent"}, nil
}

func (h *handler) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.MessageResponse, error) {
	if err := h.auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.MessageResponse{Message: "Password reset successful"}, nil
}

func (h *handler) Me(ctx context.Context, _ *rpc.MeRequest) (*rpc.MeResponse, error) {
	user, ok := currentUser(ctx)
	if !ok {
		return nil, toStatus(common.ErrNotAuthorized)
	}
	return &rpc.MeResponse{User: toUser(user)}, nil
}

func (h *handler) Ping(ctx context.Context, _ *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}
