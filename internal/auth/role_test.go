package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{"admin", RoleAdmin, false},
		{"superadmin", RoleSuperadmin, false},
		{"Admin", RoleAdmin, false},
		{"SUPERADMIN", RoleSuperadmin, false},
		{"root", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperadmin.AtLeast(RoleAdmin))
	assert.True(t, RoleSuperadmin.AtLeast(RoleSuperadmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, RoleAdmin.AtLeast(RoleSuperadmin))
}

func TestRoleJSON(t *testing.T) {
	t.Run("Marshal", func(t *testing.T) {
		data, err := json.Marshal(RoleSuperadmin)
		require.NoError(t, err)
		assert.Equal(t, `"superadmin"`, string(data))
	})

	t.Run("Unmarshal", func(t *testing.T) {
		var r Role
		require.NoError(t, json.Unmarshal([]byte(`"admin"`), &r))
		assert.Equal(t, RoleAdmin, r)
	})

	t.Run("Unmarshal unknown role", func(t *testing.T) {
		var r Role
		assert.Error(t, json.Unmarshal([]byte(`"wizard"`), &r))
	})
}
