package handlers

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FasoLink/internal/models"
)

func TestGenerateUserTag(t *testing.T) {
	db := setupTestDB(t)

	tag := GenerateUserTag("Awa Ouédraogo")
	assert.True(t, len(tag) > 4)
	assert.Contains(t, tag, "awa")

	// Tags stay unique even for identical names
	first := GenerateUserTag("Issouf Kaboré")
	require.NoError(t, db.Create(&models.User{
		FullName: "Issouf Kaboré", Email: "i1@test.bf", Phone: "70000001",
		Password: "x", UserTag: first, Role: models.RoleArtisan,
	}).Error)

	second := GenerateUserTag("Issouf Kaboré")
	assert.NotEqual(t, first, second)
}

func TestGenerateJWTCarriesRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{FullName: "Awa Ouédraogo", Email: "awa@test.bf", Role: models.RoleArtisan}
	user.ID = 42

	tokenString, err := generateJWT(user)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.EqualValues(t, 42, claims["user_id"])
	assert.Equal(t, "awa@test.bf", claims["email"])
	assert.Equal(t, "artisan", claims["role"])
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	user := &models.User{Email: "x@test.bf", Role: models.RoleClient}
	_, err := generateJWT(user)
	assert.Error(t, err)
}
