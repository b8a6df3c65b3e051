package api

import (
	"context"

	"sapcca/client/internal/models"
)

// AuthResult is the successful outcome of login or OTP verification.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// Login exchanges credentials for a bearer token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.post(ctx, "/api/auth/login", body, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

// RegisterInput is the signup form payload. RegistrationNumber is optional.
type RegisterInput struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// Register starts a signup. The backend answers with an OTP challenge; the
// account is not created until VerifyOTP succeeds.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.post(ctx, "/api/auth/register", input, nil)
}

// VerifyOTP completes a signup and returns the fresh session.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (AuthResult, error) {
	body := map[string]string{"email": email, "otp": otp}
	var result AuthResult
	if err := c.post(ctx, "/api/auth/verify-otp", body, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (models.Profile, error) {
	var profile models.Profile
	if err := c.get(ctx, "/api/profile", &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// UpdateProfile changes the display name.
func (c *Client) UpdateProfile(ctx context.Context, name string) error {
	return c.post(ctx, "/api/profile/update", map[string]string{"name": name}, nil)
}
