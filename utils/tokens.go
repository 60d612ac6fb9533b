package utils

import (
	"context"
	"strconv"
	"time"

	"govstay-server/models"
	"govstay-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

var (
	bgContext          = context.Background()
	accessTokenSecret  []byte
	refreshTokenSecret []byte
)

// ConfigureTokens installs the signing secrets used by CreateTokenPair.
func ConfigureTokens(accessSecret, refreshSecret string) {
	accessTokenSecret = []byte(accessSecret)
	refreshTokenSecret = []byte(refreshSecret)
}

func AccessTokenSecret() []byte  { return accessTokenSecret }
func RefreshTokenSecret() []byte { return refreshTokenSecret }

func CreateTokenPair(id uint) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, accessTokenSecret, accessTokenTTL)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, refreshTokenSecret, refreshTokenTTL)

	userID := strconv.FormatUint(uint64(id), 10)

	refreshClaims := jwt.Claims{Subject: userID}

	// Load role for embedding into access token
	var u models.User
	role := models.RoleGuest
	if err := storage.DB.Select("id, role").First(&u, id).Error; err == nil && u.Role != "" {
		role = u.Role
	}

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if storage.Redis != nil {
		if err := storage.Redis.Set(bgContext, string(refreshToken), "true", refreshTokenTTL+5*time.Minute).Err(); err != nil {
			Log.WithError(err).Warn("could not allow-list refresh token")
		}
	}

	return &tokenPair, nil
}

// RefreshToken rotates a verified refresh token. With Redis configured the
// token must still be on the allow-list and is consumed.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	if storage.Redis != nil {
		validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
		if tokenErr != nil {
			CreateNotFound(ctx)
			return
		}
		if validToken != "true" {
			ctx.StatusCode(iris.StatusForbidden)
			return
		}
		storage.Redis.Del(bgContext, tokenStr)
	}

	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(uint(userID))
	if tokenPairErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

func (t *AccessToken) IsAdmin() bool {
	return t != nil && t.Role == models.RoleAdmin
}

// GetAccessToken returns the verified access-token claims, or nil.
func GetAccessToken(ctx iris.Context) *AccessToken {
	if tok, ok := jwt.Get(ctx).(*AccessToken); ok {
		return tok
	}
	return nil
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
