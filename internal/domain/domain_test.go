package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserRole(t *testing.T) {
	role, ok := ParseUserRole("moderator")
	assert.True(t, ok)
	assert.Equal(t, UserRoleModerator, role)

	role, ok = ParseUserRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, UserRoleAdmin, role)

	_, ok = ParseUserRole("superuser")
	assert.False(t, ok)

	_, ok = ParseUserRole("")
	assert.False(t, ok)
}

func TestUserPatchOnlyTouchesSuppliedFields(t *testing.T) {
	u := User{ID: "1", Name: "John Doe", Email: "john@example.com", Role: UserRoleAdmin}
	name := "Johnny"
	UserPatch{Name: &name}.Apply(&u)

	assert.Equal(t, "Johnny", u.Name)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, UserRoleAdmin, u.Role)
}

func TestProductPatchRecomputesAvailability(t *testing.T) {
	p := Product{ID: "1", Price: 10, Stock: 5, Available: true}

	zero := int64(0)
	ProductPatch{Stock: &zero}.Apply(&p)
	assert.False(t, p.Available)

	three := int64(3)
	ProductPatch{Stock: &three}.Apply(&p)
	assert.True(t, p.Available)
	assert.Equal(t, 10.0, p.Price)
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 94.99, RoundPrice(94.9905))
	assert.Equal(t, 1.01, RoundPrice(1.005000001))
	assert.Equal(t, 1299.99, RoundPrice(1299.99))
}
