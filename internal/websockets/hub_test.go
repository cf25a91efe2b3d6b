package websockets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km0-cafe/restaurant-service/internal/models"
)

func TestValidClientType(t *testing.T) {
	for _, ct := range []ClientType{ClientAdmin, ClientVerifier, ClientDisplay} {
		assert.True(t, ValidClientType(ct))
	}
	assert.False(t, ValidClientType("kitchen"))
	assert.False(t, ValidClientType(""))
}

func TestOutboundTargets(t *testing.T) {
	msg := outbound{audiences: []ClientType{ClientAdmin, ClientVerifier}}
	assert.True(t, msg.targets(ClientAdmin))
	assert.True(t, msg.targets(ClientVerifier))
	assert.False(t, msg.targets(ClientDisplay))
}

func TestAllowedClientType(t *testing.T) {
	cases := []struct {
		role    models.UserRole
		ct      ClientType
		allowed bool
	}{
		{models.RoleAdmin, ClientAdmin, true},
		{models.RoleAdmin, ClientVerifier, true},
		{models.RoleAdmin, ClientDisplay, true},
		{models.RoleVerifier, ClientAdmin, false},
		{models.RoleVerifier, ClientVerifier, true},
		{models.RoleVerifier, ClientDisplay, true},
		{models.RoleUser, ClientAdmin, false},
		{models.RoleUser, ClientVerifier, false},
		{models.RoleUser, ClientDisplay, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, allowedClientType(tc.role, tc.ct),
			"role %s as %s", tc.role, tc.ct)
	}
}
