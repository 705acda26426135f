package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/rpc"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

// protected lists the methods that need a session token.
var protected = map[string]bool{
	rpc.MethodMe: true,
}

// tokenFromMetadata reads the access_token key, falling back to a bearer
// authorization value.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	if values := md.Get("authorization"); len(values) > 0 {
		if token, ok := strings.CutPrefix(values[0], "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protected[info.FullMethod] {

		accessToken := tokenFromMetadata(ctx)
		if accessToken == "" {
			return nil, toStatus(common.ErrNotAuthorized.WithMessage("Not authorized, no token provided"))
		}

		user, err := s.auth.Authenticate(ctx, accessToken)
		if err != nil {
			return nil, toStatus(err)
		}

		ctx = context.WithValue(ctx, userKey, user)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	return resp, err
}

func currentUser(ctx context.Context) (*models.UserView, bool) {
	u, ok := ctx.Value(userKey).(*models.UserView)
	return u, ok && u != nil
}
