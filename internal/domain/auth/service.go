package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
)

type AuthService interface {
	// Login checks credentials and opens a session
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Logout closes the session; its token is rejected afterwards
	Logout(ctx context.Context, sess *session.Session) error
}
