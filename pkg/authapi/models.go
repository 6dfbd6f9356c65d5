package authapi

import "github.com/samvad-hq/authprobe/pkg/schema"

// RegistrationRequest is the body of POST /api/auth/register.
type RegistrationRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse describes a registered user.
type UserResponse struct {
	ID       int64  `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// AuthRequest is the body of POST /api/auth/login.
type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the authenticated user.
type AuthResponse struct {
	Token string       `json:"token" validate:"required"`
	User  UserResponse `json:"user" validate:"required"`
}

func (r RegistrationRequest) Validate() error { return schema.Validate(r) }
func (r UserResponse) Validate() error        { return schema.Validate(r) }
func (r AuthRequest) Validate() error         { return schema.Validate(r) }
func (r AuthResponse) Validate() error        { return schema.Validate(r) }

// Credentials returns the login request matching a registration.
func (r RegistrationRequest) Credentials() AuthRequest {
	return AuthRequest{Username: r.Username, Password: r.Password}
}

// ParseUserResponse decodes and validates a register response body.
func ParseUserResponse(data []byte) (UserResponse, error) {
	var out UserResponse
	if err := schema.Decode(data, &out); err != nil {
		return UserResponse{}, err
	}
	return out, nil
}

// ParseAuthResponse decodes and validates a login response body.
func ParseAuthResponse(data []byte) (AuthResponse, error) {
	var out AuthResponse
	if err := schema.Decode(data, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}
