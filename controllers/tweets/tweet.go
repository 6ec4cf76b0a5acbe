package tweets

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/utils"
)

type tweetInput struct {
	Content string `json:"content"`
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return utils.ErrValidation("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxTweetLength {
		return utils.ErrValidation("Content exceeds the maximum length of 280 characters")
	}
	return nil
}

func CreateTweet(c *gin.Context) {
	var input tweetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}

	if err := validateContent(input.Content); err != nil {
		utils.RespondError(c, err)
		return
	}

	tweet := models.Tweet{
		Content: input.Content,
		OwnerID: authentication.UserID(c),
	}
	if err := config.DB.Create(&tweet).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "Tweet created successfully", tweet)
}

// GetUserTweets lists the caller's own tweets, newest first.
func GetUserTweets(c *gin.Context) {
	userID := c.Param("userId")
	if !utils.ValidID(userID) {
		utils.RespondError(c, utils.ErrInvalidID("userId"))
		return
	}
	if userID != authentication.UserID(c) {
		utils.RespondError(c, utils.ErrForbidden("You are not authorized to view these tweets"))
		return
	}

	var tweets []models.Tweet
	if err := config.DB.Where("owner_id = ?", userID).
		Order("created_at DESC").Find(&tweets).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "User tweets fetched successfully", tweets)
}

func UpdateTweet(c *gin.Context) {
	tweet, err := loadOwnedTweet(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var input tweetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}

	// Empty content means "not supplied"; the tweet stays as it is.
	if input.Content != "" {
		if err := validateContent(input.Content); err != nil {
			utils.RespondError(c, err)
			return
		}
		tweet.Content = input.Content
		if err := config.DB.Save(tweet).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	utils.Respond(c, http.StatusOK, "Tweet updated successfully", tweet)
}

func DeleteTweet(c *gin.Context) {
	tweet, err := loadOwnedTweet(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).
			Where("target_kind = ? AND target_id = ?", models.TargetTweet, tweet.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.TargetComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.TargetTweet, tweet.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.TargetTweet, tweet.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tweet{}, "id = ?", tweet.ID).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Tweet deleted successfully", nil)
}

func loadOwnedTweet(c *gin.Context) (*models.Tweet, error) {
	tweetID := c.Param("tweetId")
	if !utils.ValidID(tweetID) {
		return nil, utils.ErrInvalidID("tweetId")
	}

	var tweet models.Tweet
	if err := config.DB.First(&tweet, "id = ?", tweetID).Error; err != nil {
		return nil, utils.ErrNotFound("Tweet")
	}

	if tweet.OwnerID != authentication.UserID(c) {
		return nil, utils.ErrForbidden("You are not authorized to modify this tweet")
	}
	return &tweet, nil
}
