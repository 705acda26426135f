package httpapi

import (
	"mime/multipart"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type VerifyOTPRequest struct {
	UserID  string `json:"userId" form:"userId"`
	OTPCode string `json:"otpCode" form:"otpCode"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" form:"name"`
	Bio  string `json:"bio" form:"bio"`
}

// MessageResponse is the body of simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type VerifyOTPResponse struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *models.UserView `json:"user"`
}

type ProfileResponse struct {
	Message string          `json:"message"`
	Profile *models.Profile `json:"profile"`
}

type UploadResponse struct {
	Message  string        `json:"message"`
	CloudURL string        `json:"cloudUrl"`
	Type     string        `json:"type"`
	Media    *models.Media `json:"media"`
}

type HistoryResponse struct {
	MediaList []*services.MediaItem `json:"mediaList"`
}

func parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return common.Validation("Invalid request body")
	}
	return nil
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Message: "StreamForge API running"})
}

func (s *Server) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(MessageResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	userID, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(MessageResponse{Message: "OTP sent to your email", UserID: userID})
}

func (s *Server) verifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	sess, err := s.auth.VerifyOTP(c.UserContext(), req.UserID, req.OTPCode)
	if err != nil {
		return err
	}

	s.setSessionCookie(c, sess.Token)
	return c.JSON(VerifyOTPResponse{
		Message:   "OTP verified, login successful",
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.auth.Logout(c.UserContext())
	s.clearSessionCookie(c)
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}

func (s *Server) forgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	if err := s.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Password reset email sent"})
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	if err := s.auth.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Password reset successful"})
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	p, err := s.profile.Get(c.UserContext(), CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	in := services.ProfileInput{Name: &req.Name, Bio: &req.Bio}
	if fh, err := c.FormFile("profilePic"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return common.Validation("Unreadable profile picture")
		}
		defer f.Close()
		in.Picture = upload(fh, f)
	}

	p, err := s.profile.Update(c.UserContext(), CurrentUser(c).ID, in)
	if err != nil {
		return err
	}
	return c.JSON(ProfileResponse{Message: "Profile updated successfully", Profile: p})
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	err := s.profile.ChangePassword(c.UserContext(), CurrentUser(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Password changed successfully"})
}

func (s *Server) deleteAccount(c *fiber.Ctx) error {
	if err := s.profile.DeleteAccount(c.UserContext(), CurrentUser(c).ID); err != nil {
		return err
	}
	s.clearSessionCookie(c)
	return c.JSON(MessageResponse{Message: "Account deleted successfully"})
}

func (s *Server) uploadMedia(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return common.Validation("No file provided")
	}
	f, err := fh.Open()
	if err != nil {
		return common.Validation("Unreadable file")
	}
	defer f.Close()

	m, err := s.media.Upload(c.UserContext(), CurrentUser(c).ID, *upload(fh, f))
	if err != nil {
		return err
	}
	return c.JSON(UploadResponse{
		Message:  "Upload successful",
		CloudURL: m.CloudURL,
		Type:     m.Type,
		Media:    m,
	})
}

func (s *Server) mediaHistory(c *fiber.Ctx) error {
	items, err := s.media.History(c.UserContext(), CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(HistoryResponse{MediaList: items})
}

func upload(fh *multipart.FileHeader, f multipart.File) *services.Upload {
	return &services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
}
