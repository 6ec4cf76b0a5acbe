package comments

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/utils"
)

type commentInput struct {
	Content string `json:"content"`
}

// GetVideoComments lists a video's comments, newest first, paginated.
func GetVideoComments(c *gin.Context) {
	listComments(c, models.TargetVideo, c.Param("videoId"), "videoId", "Video")
}

// GetTweetComments lists a tweet's comments, newest first, paginated.
func GetTweetComments(c *gin.Context) {
	listComments(c, models.TargetTweet, c.Param("tweetId"), "tweetId", "Tweet")
}

func AddVideoComment(c *gin.Context) {
	addComment(c, models.TargetVideo, c.Param("videoId"), "videoId", "Video")
}

func AddTweetComment(c *gin.Context) {
	addComment(c, models.TargetTweet, c.Param("tweetId"), "tweetId", "Tweet")
}

func listComments(c *gin.Context, kind, targetID, paramName, entityName string) {
	if !utils.ValidID(targetID) {
		utils.RespondError(c, utils.ErrInvalidID(paramName))
		return
	}
	if err := ensureTargetExists(kind, targetID, entityName); err != nil {
		utils.RespondError(c, err)
		return
	}

	p := utils.ParsePagination(c)

	var total int64
	if err := config.DB.Model(&models.Comment{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var items []models.Comment
	err := config.DB.
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		Find(&items).Error
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Comments fetched successfully", gin.H{
		"comments":   items,
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": p.TotalPages(total),
	})
}

func addComment(c *gin.Context, kind, targetID, paramName, entityName string) {
	// The route shape normally guarantees a target; an empty id can only
	// mean the caller hit a malformed path.
	if targetID == "" {
		utils.RespondError(c, utils.ErrValidation("Either videoId or tweetId is required"))
		return
	}
	if !utils.ValidID(targetID) {
		utils.RespondError(c, utils.ErrInvalidID(paramName))
		return
	}

	var input commentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		utils.RespondError(c, utils.ErrValidation("Comment content is required"))
		return
	}

	if err := ensureTargetExists(kind, targetID, entityName); err != nil {
		utils.RespondError(c, err)
		return
	}

	comment := models.Comment{
		Content:    input.Content,
		TargetKind: kind,
		TargetID:   targetID,
		OwnerID:    authentication.UserID(c),
	}
	if err := config.DB.Create(&comment).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := preloadOwner(&comment); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Comment added successfully", comment)
}

func UpdateComment(c *gin.Context) {
	comment, err := loadOwnedComment(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var input commentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		utils.RespondError(c, utils.ErrValidation("Comment content is required"))
		return
	}

	comment.Content = input.Content
	if err := config.DB.Save(comment).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := preloadOwner(comment); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Comment updated successfully", comment)
}

func DeleteComment(c *gin.Context) {
	comment, err := loadOwnedComment(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_kind = ? AND target_id = ?", models.TargetComment, comment.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, "id = ?", comment.ID).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Comment deleted successfully", nil)
}

func loadOwnedComment(c *gin.Context) (*models.Comment, error) {
	commentID := c.Param("commentId")
	if !utils.ValidID(commentID) {
		return nil, utils.ErrInvalidID("commentId")
	}

	var comment models.Comment
	if err := config.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		return nil, utils.ErrNotFound("Comment")
	}

	if comment.OwnerID != authentication.UserID(c) {
		return nil, utils.ErrForbidden("You are not authorized to modify this comment")
	}
	return &comment, nil
}

func ensureTargetExists(kind, targetID, entityName string) error {
	var err error
	switch kind {
	case models.TargetVideo:
		err = config.DB.Select("id").First(&models.Video{}, "id = ?", targetID).Error
	case models.TargetTweet:
		err = config.DB.Select("id").First(&models.Tweet{}, "id = ?", targetID).Error
	default:
		return utils.ErrValidation("Unsupported comment target")
	}
	if err != nil {
		return utils.ErrNotFound(entityName)
	}
	return nil
}

func preloadOwner(comment *models.Comment) error {
	return config.DB.
		Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		First(comment, "id = ?", comment.ID).Error
}
