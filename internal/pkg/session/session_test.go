package session

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	exp := time.Date(2025, 7, 7, 18, 0, 0, 0, time.UTC)
	sess, err := FromClaims(map[string]interface{}{
		"user_id":     "u-1",
		"employee_id": "e-1",
		"role":        "employee",
		"jti":         "tok-1",
		"exp":         exp,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", sess.UserID)
	assert.Equal(t, user.RoleEmployee, sess.Role)
	assert.Equal(t, "tok-1", sess.TokenID)
	assert.Equal(t, exp, sess.ExpiresAt)
	require.True(t, sess.HasEmployee())
	assert.Equal(t, "e-1", *sess.EmployeeID)
}

func TestFromClaims_SellerWithoutEmployee(t *testing.T) {
	sess, err := FromClaims(map[string]interface{}{
		"user_id":     "u-2",
		"employee_id": nil,
		"role":        "seller",
		"jti":         "tok-2",
		"exp":         float64(1751900000),
	})
	require.NoError(t, err)
	assert.False(t, sess.HasEmployee())
	assert.Equal(t, int64(1751900000), sess.ExpiresAt.Unix())
	assert.True(t, sess.Can(user.PermissionPayrollManage))
}

func TestFromClaims_Invalid(t *testing.T) {
	cases := []map[string]interface{}{
		{"role": "seller", "jti": "t"},
		{"user_id": "u", "role": "admin", "jti": "t"},
		{"user_id": "u", "role": "seller"},
	}
	for _, claims := range cases {
		_, err := FromClaims(claims)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	sess := &Session{UserID: "u-1", Role: user.RoleOnlineEmployee}
	got, err := FromContext(NewContext(context.Background(), sess))
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.True(t, got.Can(user.PermissionAttendanceScan))
	assert.False(t, got.Can(user.PermissionPayrollViewAll))
}
