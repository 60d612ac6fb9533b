package routes

import (
	"errors"
	"strings"

	"govstay-server/models"
	"govstay-server/storage"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const badCredentials = "Invalid email or password."

// Register - POST /api/user/register. New accounts are always guests; admins
// are created with govstayctl setup-admin.
func Register(ctx iris.Context) {
	var input RegisterUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	existing, err := findUserByEmail(ctx, input.Email)
	switch {
	case err != nil:
		utils.CreateInternalServerError(ctx)
		return
	case existing != nil:
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashed, err := hashAndSaltPassword(input.Password)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user := models.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Password:  hashed,
		Role:      models.RoleGuest,
	}
	if err := storage.DB.WithContext(ctx.Request().Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.CreateEmailAlreadyRegistered(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Log.WithField("user_id", user.ID).Info("guest registered")
	returnUser(user, ctx)
}

// Login - POST /api/user/login
func Login(ctx iris.Context) {
	var input LoginUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user, err := findUserByEmail(ctx, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", badCredentials, ctx)
		return
	}

	returnUser(*user, ctx)
}

// GetMe returns the caller's own account.
func GetMe(ctx iris.Context) {
	var user models.User
	res := storage.DB.WithContext(ctx.Request().Context()).Limit(1).Find(&user, callerID(ctx))
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(user)
}

// findUserByEmail returns nil, nil when no account uses email.
func findUserByEmail(ctx iris.Context, email string) (*models.User, error) {
	var user models.User
	res := storage.DB.WithContext(ctx.Request().Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&user)
	if res.Error != nil || res.RowsAffected == 0 {
		return nil, res.Error
	}
	return &user, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
