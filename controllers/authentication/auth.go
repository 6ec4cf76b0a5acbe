package authentication

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/models"
	"streamhive-backend/utils"
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

type registerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GenerateToken signs an HS256 JWT for the given user.
func GenerateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(config.C.JWT.TTLHours) * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.C.JWT.Secret))
}

// Register creates a local account.
func Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		utils.RespondError(c, utils.ErrValidation("Username, email and password are required"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Password: string(hashed),
	}
	// The unique indexes on username and email arbitrate; a check-then-insert
	// would race with concurrent registrations.
	err = config.DB.Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondError(c, utils.NewAPIError(http.StatusConflict, "User already exists"))
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, err := GenerateToken(&user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "User registered successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login checks the password and returns a fresh token.
func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, utils.NewAPIError(http.StatusUnauthorized, "Invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, utils.NewAPIError(http.StatusUnauthorized, "Invalid credentials"))
		return
	}

	token, err := GenerateToken(&user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Logged in successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// CurrentUser returns the caller's own profile.
func CurrentUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", UserID(c)).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("User"))
		return
	}
	utils.Respond(c, http.StatusOK, "Current user fetched successfully", user)
}

// ChannelProfile returns a public channel page: the user's public fields
// plus a subscriber count derived from subscription rows at read time.
func ChannelProfile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := config.DB.Select(models.UserPublicFields).
		Where("username = ?", username).First(&user).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("Channel"))
		return
	}

	var subscriberCount int64
	if err := config.DB.Model(&models.Subscription{}).
		Where("channel_id = ?", user.ID).Count(&subscriberCount).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Channel fetched successfully", gin.H{
		"user":            user,
		"subscriberCount": subscriberCount,
	})
}

// AuthMiddleware resolves the caller's identity from the bearer token and
// stores the user id in the request context. Handlers trust it blindly.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Respond(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.C.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			utils.Respond(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}
