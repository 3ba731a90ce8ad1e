package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portfolio/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminCookie   = "admin_token"
	adminTokenTTL = 24 * time.Hour
)

var errInvalidCredentials = errors.New("invalid credentials")

// createAdmin registers an admin account, or resets the password of an existing one.
func createAdmin(gdb *gorm.DB, username, password string) (models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.AdminUser{}, fmt.Errorf("username required")
	}
	if len(password) < 6 {
		return models.AdminUser{}, fmt.Errorf("password too short (min 6)")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.AdminUser{}, err
	}
	var existing []models.AdminUser
	if err := gdb.Where("username = ?", username).Limit(1).Find(&existing).Error; err != nil {
		return models.AdminUser{}, fmt.Errorf("find admin %s: %w", username, err)
	}
	var user models.AdminUser
	if len(existing) > 0 {
		user = existing[0]
		user.HashedPassword = hashed
		user.IsActive = true
		err = gdb.Save(&user).Error
	} else {
		user = models.AdminUser{Username: username, HashedPassword: hashed, IsActive: true}
		err = gdb.Create(&user).Error
	}
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("save admin %s: %w", username, err)
	}
	return user, nil
}

func authenticateAdmin(gdb *gorm.DB, username, password string) (models.AdminUser, error) {
	var user models.AdminUser
	if err := gdb.Where("username = ? AND is_active = ?", strings.TrimSpace(username), true).First(&user).Error; err != nil {
		return models.AdminUser{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.AdminUser{}, errInvalidCredentials
	}
	return user, nil
}

func issueAdminToken(user models.AdminUser) (string, error) {
	t := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.Username,
		"iat": t.Unix(),
		"exp": t.Add(adminTokenTTL).Unix(),
	})
	return token.SignedString(cfg.JWTSecret)
}

// adminAuthMiddleware accepts the token from the Authorization header or the admin cookie.
func adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenString = strings.TrimPrefix(h, "Bearer ")
		} else if v, err := c.Cookie(adminCookie); err == nil {
			tokenString = v
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return cfg.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		c.Set("admin", sub)
		c.Next()
	}
}

func adminLoginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := authenticateAdmin(db, req.Username, req.Password)
	if err != nil {
		slog.Warn("failed admin login", "username", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueAdminToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminCookie, token, int(adminTokenTTL.Seconds()), "/admin", "", gin.Mode() == gin.ReleaseMode, true)
	slog.Info("admin login", "username", user.Username)
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

func adminLogoutHandler(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
