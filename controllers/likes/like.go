package likes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/utils"
)

func ToggleVideoLike(c *gin.Context) {
	toggleLike(c, models.TargetVideo, c.Param("videoId"), "videoId", "Video")
}

func ToggleCommentLike(c *gin.Context) {
	toggleLike(c, models.TargetComment, c.Param("commentId"), "commentId", "Comment")
}

func ToggleTweetLike(c *gin.Context) {
	toggleLike(c, models.TargetTweet, c.Param("tweetId"), "tweetId", "Tweet")
}

// toggleLike flips membership of (caller, target) in the like relation.
// Delete-first keeps each step a single atomic statement; the unique index
// on the pair resolves insert races to exactly one row.
func toggleLike(c *gin.Context, kind, targetID, paramName, entityName string) {
	if !utils.ValidID(targetID) {
		utils.RespondError(c, utils.ErrInvalidID(paramName))
		return
	}
	if err := ensureTargetExists(kind, targetID, entityName); err != nil {
		utils.RespondError(c, err)
		return
	}

	userID := authentication.UserID(c)

	res := config.DB.
		Where("liked_by_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Delete(&models.Like{})
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.Respond(c, http.StatusOK, entityName+" unliked successfully", gin.H{"state": "removed"})
		return
	}

	like := models.Like{
		LikedByID:  userID,
		TargetKind: kind,
		TargetID:   targetID,
	}
	err := config.DB.Create(&like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a concurrent toggle on the same pair; the relation is
		// present, so this call flips it off.
		if err := config.DB.
			Where("liked_by_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
			Delete(&models.Like{}).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.Respond(c, http.StatusOK, entityName+" unliked successfully", gin.H{"state": "removed"})
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, entityName+" liked successfully", gin.H{
		"state": "added",
		"like":  like,
	})
}

// GetLikedVideos lists the caller's liked videos, most recently liked first.
func GetLikedVideos(c *gin.Context) {
	userID := authentication.UserID(c)

	var likes []models.Like
	if err := config.DB.
		Where("liked_by_id = ? AND target_kind = ?", userID, models.TargetVideo).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	ids := make([]string, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.TargetID)
	}

	videos := make([]models.Video, 0, len(ids))
	if len(ids) > 0 {
		var found []models.Video
		err := config.DB.
			Where("id IN ?", ids).
			Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
			Find(&found).Error
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		byID := make(map[string]models.Video, len(found))
		for _, v := range found {
			byID[v.ID] = v
		}
		for _, id := range ids {
			if v, ok := byID[id]; ok {
				videos = append(videos, v)
			}
		}
	}

	utils.Respond(c, http.StatusOK, "Liked videos fetched successfully", videos)
}

func ensureTargetExists(kind, targetID, entityName string) error {
	var err error
	switch kind {
	case models.TargetVideo:
		err = config.DB.Select("id").First(&models.Video{}, "id = ?", targetID).Error
	case models.TargetComment:
		err = config.DB.Select("id").First(&models.Comment{}, "id = ?", targetID).Error
	case models.TargetTweet:
		err = config.DB.Select("id").First(&models.Tweet{}, "id = ?", targetID).Error
	default:
		return utils.ErrValidation("Unsupported like target")
	}
	if err != nil {
		return utils.ErrNotFound(entityName)
	}
	return nil
}
