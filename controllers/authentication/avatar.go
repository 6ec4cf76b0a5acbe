package authentication

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/models"
	"streamhive-backend/services"
	"streamhive-backend/utils"
)

// UpdateAvatar replaces the caller's avatar. The previous image is enqueued
// for remote deletion rather than removed inline.
func UpdateAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		utils.RespondError(c, utils.ErrValidation("Avatar file is required"))
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", UserID(c)).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("User"))
		return
	}

	localPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		utils.RespondError(c, err)
		return
	}
	defer os.Remove(localPath)

	result, err := services.Media.Upload(c.Request.Context(), localPath, services.MediaKindImage)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Update and deletion task commit together; a task must never outlive a
	// row that still references the old object.
	oldAvatar := user.Avatar
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("avatar", result.URL).Error; err != nil {
			return err
		}
		if oldAvatar != "" {
			return services.EnqueueMediaDeletion(tx,
				services.ResourceRefFromURL(oldAvatar), services.MediaKindImage)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Avatar updated successfully", user)
}
