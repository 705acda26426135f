package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/auth"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/notify"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/memory"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv *Server
	rec *notify.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		FrontendURL:   "http://localhost:5173",
		SessionTTL:    time.Hour,
		OTPTTL:        10 * time.Minute,
		ResetTTL:      time.Hour,
		RepoTimeout:   time.Second,
		NotifyTimeout: time.Second,
	}
	rm := repomanager.NewInMemoryRepositoryManager(memory.NewStore())
	rec := notify.NewRecorder()
	blobs := storage.NewMemory()

	issuer, err := auth.NewIssuer("test-secret", cfg.SessionTTL)
	require.NoError(t, err)

	opts := []services.Option{services.WithHasher(cryptox.NewHasher(cryptox.Params{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}))}
	otps := services.NewOTPManager(nil, rm, cfg.OTPTTL, opts...)
	resets := services.NewResetTokenManager(nil, rm, cfg.ResetTTL, opts...)

	srv := New(Services{
		Auth: services.NewAuthService(services.AuthDeps{
			Repos:       rm,
			OTPs:        otps,
			ResetTokens: resets,
			Issuer:      issuer,
			Notifier:    rec,
		}, cfg, opts...),
		Profile: services.NewProfileService(nil, rm, blobs, cfg, opts...),
		Media:   services.NewMediaService(nil, rm, blobs, cfg, opts...),
	}, cfg, logging.Nop(), WithAccessLog(io.Discard))

	return &testEnv{srv: srv, rec: rec}
}

type reqOpt func(*http.Request)

func withCookie(token string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: token}) }
}

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) (*http.Response, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

// login registers ann and returns a session token.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	resp, _ := e.do(t, "POST", "/api/auth/register", RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, "POST", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sent, ok := e.rec.Last(notify.KindOTP, "ann@x.com")
	require.True(t, ok)

	resp, body = e.do(t, "POST", "/api/auth/verify-otp", VerifyOTPRequest{UserID: body["userId"].(string), OTPCode: sent.Code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(c, common.SessionCookieName+"=") {
			return c
		}
	}
	return ""
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "StreamForge API running", body["message"])
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, "GET", "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "route_not_found", body["code"])
	assert.Equal(t, "Route /nope not found", body["message"])
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, "POST", "/api/auth/register", RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, body["userId"])

	resp, body = e.do(t, "POST", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent to your email", body["message"])
	userID := body["userId"].(string)
	assert.NotContains(t, fmt.Sprint(body), e.mustOTP(t))

	resp, body = e.do(t, "POST", "/api/auth/verify-otp", VerifyOTPRequest{UserID: userID, OTPCode: e.mustOTP(t)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP verified, login successful", body["message"])
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ann@x.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	cookie := strings.ToLower(sessionCookie(resp))
	assert.Contains(t, cookie, "token="+strings.ToLower(token))
	assert.Contains(t, cookie, "httponly")
	assert.Contains(t, cookie, "samesite=strict")
	assert.Contains(t, cookie, "max-age=3600")
	assert.NotContains(t, cookie, "; secure")

	resp, body = e.do(t, "POST", "/api/auth/verify-otp", VerifyOTPRequest{UserID: userID, OTPCode: e.mustOTP(t)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "otp_not_found", body["code"])

	resp, body = e.do(t, "GET", "/api/users/me", nil, withCookie(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ann", body["name"])
	assert.Equal(t, true, body["twoFactorEnabled"])

	resp, _ = e.do(t, "GET", "/api/users/me", nil, withBearer(token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, "POST", "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", body["message"])
	assert.Contains(t, sessionCookie(resp), "token=;")
}

func (e *testEnv) mustOTP(t *testing.T) string {
	t.Helper()
	sent, ok := e.rec.Last(notify.KindOTP, "ann@x.com")
	require.True(t, ok)
	return sent.Code
}

func TestErrorMapping(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"validation", "/api/auth/register", RegisterRequest{Name: "", Email: "b@x.com", Password: "Passw0rd!"}, 400, "invalid_input"},
		{"conflict", "/api/auth/register", RegisterRequest{Name: "A", Email: "ann@x.com", Password: "Passw0rd!"}, 409, "email_taken"},
		{"wrong password", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: "nope-nope"}, 401, "invalid_credentials"},
		{"unknown email", "/api/auth/login", LoginRequest{Email: "zed@x.com", Password: "Passw0rd!"}, 401, "invalid_credentials"},
		{"blank password", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: ""}, 401, "invalid_credentials"},
		{"forgot unknown", "/api/auth/forgot-password", ForgotPasswordRequest{Email: "zed@x.com"}, 404, "user_not_found"},
		{"bad reset token", "/api/auth/reset-password", ResetPasswordRequest{Token: "abc", NewPassword: "Passw0rd!"}, 401, "reset_invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(t, "POST", tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestMalformedBody(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, body := e.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestLoginDeliveryFailureIs503(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, "POST", "/api/auth/register", RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	e.rec.Fail(notify.KindOTP, errors.New("smtp: 421 try later"))
	resp, body := e.do(t, "POST", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: "Passw0rd!"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["code"])
	assert.NotContains(t, body["message"], "421")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, "GET", "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized, no token provided", body["message"])

	resp, body = e.do(t, "GET", "/media/history", nil, withBearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "not_authorized", body["code"])
}

func TestPasswordResetFlow(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, body := e.do(t, "POST", "/api/auth/forgot-password", ForgotPasswordRequest{Email: "ann@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password reset email sent", body["message"])

	sent, ok := e.rec.Last(notify.KindReset, "ann@x.com")
	require.True(t, ok)
	token := sent.Code[strings.LastIndex(sent.Code, "/")+1:]

	resp, body = e.do(t, "POST", "/api/auth/reset-password", ResetPasswordRequest{Token: token, NewPassword: "NewPassw0rd!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password reset successful", body["message"])

	resp, _ = e.do(t, "POST", "/api/auth/reset-password", ResetPasswordRequest{Token: token, NewPassword: "NewPassw0rd!"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, "POST", "/api/auth/login", LoginRequest{Email: "ann@x.com", Password: "NewPassw0rd!"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileRoutes(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	resp, body := e.do(t, "PUT", "/api/users/me", UpdateProfileRequest{Name: "Ann Lee", Bio: "hi"}, withCookie(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := body["profile"].(map[string]any)
	assert.Equal(t, "Ann Lee", profile["name"])
	assert.Equal(t, "hi", profile["bio"])

	resp, body = e.do(t, "PUT", "/api/users/change-password",
		ChangePasswordRequest{CurrentPassword: "wrong-pass", NewPassword: "NewPassw0rd!"}, withCookie(token))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Current password is incorrect", body["message"])

	resp, _ = e.do(t, "PUT", "/api/users/change-password",
		ChangePasswordRequest{CurrentPassword: "Passw0rd!", NewPassword: "NewPassw0rd!"}, withCookie(token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, "DELETE", "/api/users/me", nil, withCookie(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Account deleted successfully", body["message"])
	assert.Contains(t, sessionCookie(resp), "token=;")

	resp, _ = e.do(t, "GET", "/api/users/me", nil, withCookie(token))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func multipartBody(t *testing.T, field, name, contentType, data string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestMediaRoutes(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	body, ct := multipartBody(t, "file", "clip.mp4", "video/mp4", "frames")
	req := httptest.NewRequest("POST", "/media/upload", body)
	req.Header.Set("Content-Type", ct)
	withCookie(token)(req)

	resp, out := e.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Upload successful", out["message"])
	assert.Equal(t, "video", out["type"])
	assert.True(t, strings.HasPrefix(out["cloudUrl"].(string), "memory:///uploads/"))

	resp, out = e.do(t, "GET", "/media/history", nil, withCookie(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := out["mediaList"].([]any)
	require.Len(t, list, 1)
	item := list[0].(map[string]any)
	assert.Equal(t, "clip.mp4", item["fileName"])
	assert.Contains(t, item["downloadUrl"], "expires=")
	assert.NotContains(t, item, "StorageKey")
}

func TestMediaUploadWithoutFile(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	resp, body := e.do(t, "POST", "/media/upload", map[string]string{}, withCookie(token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file provided", body["message"])
}

func TestProfilePictureUpload(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	body, ct := multipartBody(t, "profilePic", "me.png", "image/png", "png")
	req := httptest.NewRequest("PUT", "/api/users/me", body)
	req.Header.Set("Content-Type", ct)
	withCookie(token)(req)

	resp, out := e.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := out["profile"].(map[string]any)
	assert.True(t, strings.HasPrefix(profile["profilePic"].(string), "memory:///uploads/"))
	assert.Equal(t, "Ann", profile["name"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(common.KindValidation))
	assert.Equal(t, 409, StatusFor(common.KindConflict))
	assert.Equal(t, 401, StatusFor(common.KindAuth))
	assert.Equal(t, 404, StatusFor(common.KindNotFound))
	assert.Equal(t, 503, StatusFor(common.KindTransient))
	assert.Equal(t, 500, StatusFor(common.KindInternal))
	assert.Equal(t, 500, StatusFor(common.KindConfig))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}
