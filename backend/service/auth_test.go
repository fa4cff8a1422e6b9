package service

import (
	"testing"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/burugo/thing"
	"github.com/stretchr/testify/assert"
)

func init() {
	common.JWTSecret = "test-jwt-secret"
	common.JWTRefreshSecret = "test-jwt-refresh-secret"
}

func tokenTestUser() *model.User {
	return &model.User{
		BaseModel: thing.BaseModel{ID: 42},
		Username:  "tokenuser",
		Role:      common.RoleCommonUser,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	user := tokenTestUser()
	token, err := GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "tokenuser", claims.Username)
	assert.Equal(t, common.RoleCommonUser, claims.Role)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	user := tokenTestUser()

	access, err := GenerateToken(user)
	assert.NoError(t, err)
	refresh, err := GenerateRefreshToken(user)
	assert.NoError(t, err)

	// Tokens signed with one secret must not verify under the other.
	_, err = ValidateToken(refresh)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)

	claims, err := ValidateRefreshToken(refresh)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}
