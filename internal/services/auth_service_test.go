// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/config"
	"github.com/marketlink/backend/internal/models"
	"github.com/marketlink/backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	suite.service = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:  "buyer1",
		Email:     "buyer1@example.com",
		Password:  "secret-pass-123",
		Password2: "secret-pass-123",
		FirstName: "Ivy",
		LastName:  "Stone",
		UserType:  models.UserTypeBuyer,
	}
}

func (suite *AuthServiceTestSuite) TestRegister() {
	resp, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	suite.Equal("buyer1", resp.User.Username)
	suite.Equal("Bearer", resp.TokenType)
	suite.NotEmpty(resp.RefreshToken)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(resp.User.ID.String(), claims.UserID)
	suite.Equal("buyer", claims.UserType)

	// The stored hash is usable for login, not the raw password.
	var user models.User
	suite.Require().NoError(suite.db.First(&user, "username = ?", "buyer1").Error)
	suite.NotEqual("secret-pass-123", user.PasswordHash)
	suite.NoError(user.CheckPassword("secret-pass-123"))
}

func (suite *AuthServiceTestSuite) TestRegisterValidation() {
	var validationErr *apperrors.ValidationError

	req := suite.registerRequest()
	req.Password2 = "something-else-42"
	_, err := suite.service.Register(req)
	suite.Require().ErrorAs(err, &validationErr)

	req = suite.registerRequest()
	req.Password = "short"
	req.Password2 = "short"
	_, err = suite.service.Register(req)
	suite.Require().ErrorAs(err, &validationErr)

	req = suite.registerRequest()
	req.UserType = "admin"
	_, err = suite.service.Register(req)
	suite.Require().ErrorAs(err, &validationErr)
}

func (suite *AuthServiceTestSuite) TestRegisterConflicts() {
	_, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	var conflictErr *apperrors.ConflictError

	dup := suite.registerRequest()
	dup.Username = "buyer1b"
	_, err = suite.service.Register(dup)
	suite.Require().ErrorAs(err, &conflictErr, "duplicate email")

	dup = suite.registerRequest()
	dup.Email = "other@example.com"
	_, err = suite.service.Register(dup)
	suite.Require().ErrorAs(err, &conflictErr, "duplicate username")
}

func (suite *AuthServiceTestSuite) TestLogin() {
	_, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	resp, err := suite.service.Login(&LoginRequest{Email: "buyer1@example.com", Password: "secret-pass-123"})
	suite.Require().NoError(err)
	suite.Equal("buyer1", resp.User.Username)
	suite.NotEmpty(resp.AccessToken)
}

func (suite *AuthServiceTestSuite) TestRefresh() {
	registered, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	refreshed, err := suite.service.Refresh(registered.RefreshToken)
	suite.Require().NoError(err)

	suite.Equal(registered.User.ID, refreshed.User.ID)
	suite.NotEmpty(refreshed.RefreshToken)

	claims, err := utils.ValidateJWT(refreshed.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID.String(), claims.UserID)
	suite.Equal("buyer", claims.UserType)
}

func (suite *AuthServiceTestSuite) TestRefreshRejectsBadToken() {
	_, err := suite.service.Refresh("not-a-token")

	var authErr *apperrors.AuthError
	suite.Require().ErrorAs(err, &authErr)
	suite.False(authErr.Forbidden)
}

func (suite *AuthServiceTestSuite) TestRefreshRejectsDeletedUser() {
	registered, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Delete(&models.User{}, "id = ?", registered.User.ID).Error)

	_, err = suite.service.Refresh(registered.RefreshToken)
	var authErr *apperrors.AuthError
	suite.Require().ErrorAs(err, &authErr)
}

func (suite *AuthServiceTestSuite) TestLoginInvalidCredentials() {
	_, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	var authErr *apperrors.AuthError

	_, err = suite.service.Login(&LoginRequest{Email: "buyer1@example.com", Password: "wrong-password"})
	suite.Require().ErrorAs(err, &authErr)
	suite.False(authErr.Forbidden)

	_, err = suite.service.Login(&LoginRequest{Email: "nobody@example.com", Password: "whatever-123"})
	suite.Require().ErrorAs(err, &authErr)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
