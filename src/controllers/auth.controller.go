package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/db"
	"github.com/lacegiovanni17/event-ticket-BE/src/lib"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/lacegiovanni17/event-ticket-BE/src/utils"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func AuthRegister(ctx *gin.Context) (user *types.APIResponseUser, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	db := db.GetDb()
	newUser := models.User{
		FirstName:    strings.TrimSpace(body.FirstName),
		LastName:     strings.TrimSpace(body.LastName),
		Country:      strings.TrimSpace(body.Country),
		Email:        body.Email,
		PasswordHash: hash,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		return tx.Create(&newUser).Error
	})
	if errors.Is(err, ErrUserExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, http.StatusConflict, ErrUserExists
	}
	if err != nil {
		log.Printf("Error registering user: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	res := newUser.ToAPIResponse()
	return &res, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusUnauthorized, ErrInvalidCredentials
		}
		log.Printf("Error retrieving user: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if !utils.CheckPassword(user.PasswordHash, body.Password) {
		return nil, http.StatusUnauthorized, ErrInvalidCredentials
	}

	ttl := config.TokenTTL()
	jwt, err := utils.GenerateJWT(user.ID, user.Email, ttl)
	if err != nil {
		log.Printf("Error signing token for user [%s]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	rd := lib.GetRedisClient()
	if err := lib.StoreToken(ctx, rd, user.ID, jwt, ttl); err != nil {
		log.Printf("[redis] Error storing token: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if err := db.
		Model(&models.User{}).
		Scopes(scopes.WithID(user.ID)).
		Update("last_active", time.Now()).
		Error; err != nil {
		log.Printf("Error updating last active for user [%s]: %s\n", user.ID, err.Error())
	}
	return &jwt, http.StatusOK, nil
}

func AuthLogout(ctx *gin.Context) (status int, err error) {
	userID := ctx.GetString("id")
	if userID == "" {
		return http.StatusUnauthorized, errors.New("unauthorized")
	}
	if err := lib.RevokeToken(ctx, lib.GetRedisClient(), userID); err != nil {
		log.Printf("[redis] Error revoking token: %s\n", err.Error())
		return http.StatusInternalServerError, err
	}
	return http.StatusNoContent, nil
}

func GetUsers(ctx *gin.Context) (users []types.APIResponseUser, status int, err error) {
	db := db.GetDb()
	var list []models.User
	if err := db.
		Model(&models.User{}).
		Order("created_at asc").
		Find(&list).
		Error; err != nil {
		log.Printf("Error retrieving users: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	users = make([]types.APIResponseUser, 0, len(list))
	for _, u := range list {
		users = append(users, u.ToAPIResponse())
	}
	return users, http.StatusOK, nil
}
