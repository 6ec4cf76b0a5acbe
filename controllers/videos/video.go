package videos

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/services"
	"streamhive-backend/utils"
)

// Columns the listing endpoint may sort by. Anything else falls back to
// newest-first.
var sortableColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"views":      "views",
	"duration":   "duration",
	"title":      "title",
}

// GetAllVideos lists published videos with search, owner filter, sorting and
// pagination.
func GetAllVideos(c *gin.Context) {
	p := utils.ParsePagination(c)
	search := c.Query("query")
	ownerID := c.Query("userId")

	if ownerID != "" {
		if !utils.ValidID(ownerID) {
			utils.RespondError(c, utils.ErrInvalidID("userId"))
			return
		}
		var owner models.User
		if err := config.DB.Select("id").First(&owner, "id = ?", ownerID).Error; err != nil {
			utils.RespondError(c, utils.ErrNotFound("User"))
			return
		}
	}

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_published = ?", true)
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if ownerID != "" {
			db = db.Where("owner_id = ?", ownerID)
		}
		return db
	}

	order := "created_at DESC"
	if column, ok := sortableColumns[c.Query("sortBy")]; ok {
		direction := "ASC"
		if c.Query("sortType") == "desc" {
			direction = "DESC"
		}
		order = column + " " + direction
	}

	var total int64
	if err := config.DB.Model(&models.Video{}).Scopes(filter).Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var items []models.Video
	err := config.DB.Scopes(filter).
		Order(order).
		Offset(p.Offset()).
		Limit(p.Limit).
		Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		Find(&items).Error
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Videos fetched", gin.H{
		"videos":     items,
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": p.TotalPages(total),
	})
}

// PublishVideo uploads the media pair and creates the record.
func PublishVideo(c *gin.Context) {
	videoFile, vErr := c.FormFile("videoFile")
	thumbnail, tErr := c.FormFile("thumbnail")
	if vErr != nil || tErr != nil {
		utils.RespondError(c, utils.ErrValidation("Video and thumbnail required"))
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" || description == "" {
		utils.RespondError(c, utils.ErrValidation("Title and description required"))
		return
	}

	videoResult, err := uploadFormFile(c, videoFile, services.MediaKindVideo)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	thumbResult, err := uploadFormFile(c, thumbnail, services.MediaKindImage)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	video := models.Video{
		Title:       title,
		Description: description,
		VideoFile:   videoResult.URL,
		Thumbnail:   thumbResult.URL,
		Duration:    videoResult.Duration,
		OwnerID:     authentication.UserID(c),
		IsPublished: true,
	}
	if err := config.DB.Create(&video).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "Video published", video)
}

// GetVideoByID fetches one video and bumps its view counter atomically.
func GetVideoByID(c *gin.Context) {
	videoID := c.Param("videoId")
	if !utils.ValidID(videoID) {
		utils.RespondError(c, utils.ErrInvalidID("videoId"))
		return
	}

	var video models.Video
	err := config.DB.
		Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		First(&video, "id = ?", videoID).Error
	if err != nil {
		utils.RespondError(c, utils.ErrNotFound("Video"))
		return
	}

	if err := config.DB.Model(&video).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	video.Views++

	utils.Respond(c, http.StatusOK, "Video fetched", video)
}

// UpdateVideo applies a partial update; empty fields are left untouched.
// A multipart request may also replace the thumbnail.
func UpdateVideo(c *gin.Context) {
	video, err := loadOwnedVideo(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var title, description, replacedThumbnail string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		title = c.PostForm("title")
		description = c.PostForm("description")

		if file, err := c.FormFile("thumbnail"); err == nil {
			result, err := uploadFormFile(c, file, services.MediaKindImage)
			if err != nil {
				utils.RespondError(c, err)
				return
			}
			replacedThumbnail = video.Thumbnail
			video.Thumbnail = result.URL
		}
	} else {
		var input struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, utils.ErrValidation("Invalid input"))
			return
		}
		title, description = input.Title, input.Description
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}

	// The save and the old-thumbnail deletion task commit together; a task
	// must never outlive a row that still references the old object.
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(video).Error; err != nil {
			return err
		}
		if replacedThumbnail != "" {
			return services.EnqueueMediaDeletion(tx,
				services.ResourceRefFromURL(replacedThumbnail), services.MediaKindImage)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Video updated", video)
}

// DeleteVideo hard-deletes the record and everything referencing it, and
// enqueues durable deletion tasks for the remote media.
func DeleteVideo(c *gin.Context) {
	video, err := loadOwnedVideo(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.EnqueueMediaDeletion(tx,
			services.ResourceRefFromURL(video.VideoFile), services.MediaKindVideo); err != nil {
			return err
		}
		if video.Thumbnail != "" {
			if err := services.EnqueueMediaDeletion(tx,
				services.ResourceRefFromURL(video.Thumbnail), services.MediaKindImage); err != nil {
				return err
			}
		}

		// Cascade: likes on the video's comments, then the comments, the
		// video's own likes and playlist memberships, then the video.
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).
			Where("target_kind = ? AND target_id = ?", models.TargetVideo, video.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.TargetComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.TargetVideo, video.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.TargetVideo, video.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", video.ID).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Video{}, "id = ?", video.ID).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Video deleted", nil)
}

// TogglePublishStatus flips the isPublished flag.
func TogglePublishStatus(c *gin.Context) {
	video, err := loadOwnedVideo(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	video.IsPublished = !video.IsPublished
	if err := config.DB.Model(video).
		Update("is_published", video.IsPublished).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Publish status updated", video)
}

func loadOwnedVideo(c *gin.Context) (*models.Video, error) {
	videoID := c.Param("videoId")
	if !utils.ValidID(videoID) {
		return nil, utils.ErrInvalidID("videoId")
	}

	var video models.Video
	if err := config.DB.First(&video, "id = ?", videoID).Error; err != nil {
		return nil, utils.ErrNotFound("Video")
	}

	if video.OwnerID != authentication.UserID(c) {
		return nil, utils.ErrForbidden("You are not authorized to modify this video")
	}
	return &video, nil
}

func uploadFormFile(c *gin.Context, file *multipart.FileHeader, kind string) (*services.UploadResult, error) {
	localPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		return nil, err
	}
	defer os.Remove(localPath)

	return services.Media.Upload(c.Request.Context(), localPath, kind)
}
