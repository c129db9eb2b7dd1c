package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Lina@Agency.Example ", "Lina", "s3cret-pass", RoleSales)
	require.NoError(t, err)

	assert.Equal(t, "lina@agency.example", u.Email)
	assert.True(t, u.Active)
	assert.True(t, u.VerifyPassword("s3cret-pass"))
	assert.False(t, u.VerifyPassword("wrong-pass"))
	assert.True(t, u.Permissions.Has(PermLeadsManage))
	assert.False(t, u.Permissions.Has(PermFinanceRead))

	p := u.Principal()
	assert.Equal(t, u.ID, p.UserID)
	assert.True(t, HasPermission(p, PermLeadsRead))
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("not-an-email", "Lina", "s3cret-pass", RoleSales)
	assert.Error(t, err)

	_, err = NewUser("lina@agency.example", "Lina", "short", RoleSales)
	assert.Error(t, err)

	_, err = NewUser("lina@agency.example", "Lina", "s3cret-pass", Role("owner"))
	assert.Error(t, err)
}

func TestLanguageDirection(t *testing.T) {
	assert.Equal(t, "rtl", LanguageArabic.Direction())
	assert.Equal(t, "ltr", LanguageEnglish.Direction())

	_, err := ParseLanguage("fr")
	assert.Error(t, err)
}
