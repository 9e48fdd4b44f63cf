package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

func newTestUser(t *testing.T, role UserRole) *User {
	t.Helper()
	email, err := NewEmail("anna@city.de")
	require.NoError(t, err)
	password, err := NewPassword("Abcdef12", prefixHasher{})
	require.NoError(t, err)
	user, err := NewUser(email, password, role)
	require.NoError(t, err)
	return user
}

func TestRegisterCitizenAlwaysCitizen(t *testing.T) {
	email, _ := NewEmail("anna@city.de")
	password, _ := NewPassword("Abcdef12", prefixHasher{})
	user, err := RegisterCitizen(email, password)
	require.NoError(t, err)
	assert.Equal(t, RoleCitizen, user.Role())
	assert.Empty(t, user.ID())
}

func TestRegisteredRequiresID(t *testing.T) {
	user := newTestUser(t, RoleCitizen)

	_, err := user.Registered()
	require.Error(t, err)

	require.NoError(t, user.AssignID("u-1"))
	event, err := user.Registered()
	require.NoError(t, err)
	assert.Equal(t, UserRegistered{UserID: "u-1", Email: "anna@city.de"}, event)

	assert.Error(t, user.AssignID("u-2"), "id is assigned only once")
}

func TestChangeRole(t *testing.T) {
	user := newTestUser(t, RoleCitizen)
	require.NoError(t, user.AssignID("u-1"))

	events, err := user.ChangeRole(RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, user.Role())
	require.Len(t, events, 1)
	assert.Equal(t, UserRoleChanged{UserID: "u-1", From: RoleCitizen, To: RoleStaff}, events[0])

	events, err = user.ChangeRole(RoleStaff)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = user.ChangeRole("MAYOR")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, RoleStaff, user.Role())
}

func TestUserSnapshotRoundTrip(t *testing.T) {
	user := newTestUser(t, RoleAdmin)
	require.NoError(t, user.AssignID("u-9"))

	restored, err := RestoreUser(user.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, user.Snapshot(), restored.Snapshot())
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole(" staff ")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, role)
	assert.True(t, role.IsPrivileged())
	assert.False(t, RoleCitizen.IsPrivileged())

	_, err = ParseUserRole("root")
	assert.Error(t, err)
}
