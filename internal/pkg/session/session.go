// Package session carries the identity of the signed-in user through a
// request. A Session is created from verified token claims once, by the auth
// middleware, and handed explicitly to the services that need identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/user"
)

var (
	ErrNoSession     = errors.New("no session in context")
	ErrInvalidClaims = errors.New("token claims do not describe a session")
)

type Session struct {
	UserID     string
	EmployeeID *string
	Role       user.Role
	TokenID    string
	ExpiresAt  time.Time
}

// Can reports whether the session's role grants permission.
func (s *Session) Can(permission user.Permission) bool {
	return s != nil && user.HasPermission(s.Role, permission)
}

// HasEmployee reports whether the session belongs to an employee profile.
func (s *Session) HasEmployee() bool {
	return s != nil && s.EmployeeID != nil && *s.EmployeeID != ""
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, error) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

// FromClaims builds a session from access token claims.
func FromClaims(claims map[string]interface{}) (*Session, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidClaims)
	}

	role, ok := claims["role"].(string)
	if !ok || !user.IsValidRole(user.Role(role)) {
		return nil, fmt.Errorf("%w: unknown role", ErrInvalidClaims)
	}

	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidClaims)
	}

	sess := &Session{
		UserID:  userID,
		Role:    user.Role(role),
		TokenID: tokenID,
	}

	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		sess.EmployeeID = &employeeID
	}

	// jwx decodes exp into time.Time; hand-built claims may carry unix seconds.
	switch exp := claims["exp"].(type) {
	case time.Time:
		sess.ExpiresAt = exp
	case int64:
		sess.ExpiresAt = time.Unix(exp, 0)
	case float64:
		sess.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return sess, nil
}
