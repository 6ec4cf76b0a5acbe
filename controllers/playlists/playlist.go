package playlists

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/utils"
)

type playlistInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func CreatePlaylist(c *gin.Context) {
	var input playlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		utils.RespondError(c, utils.ErrValidation("Playlist name is required"))
		return
	}

	playlist := models.Playlist{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     authentication.UserID(c),
	}
	if err := config.DB.Create(&playlist).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "Playlist created successfully", playlist)
}

// GetUserPlaylists lists a user's playlists. Playlists are private: only
// their owner may list them.
func GetUserPlaylists(c *gin.Context) {
	userID := c.Param("userId")
	if !utils.ValidID(userID) {
		utils.RespondError(c, utils.ErrInvalidID("userId"))
		return
	}
	if userID != authentication.UserID(c) {
		utils.RespondError(c, utils.ErrForbidden("You are not authorized to view these playlists"))
		return
	}

	var playlists []models.Playlist
	if err := config.DB.Where("owner_id = ?", userID).
		Order("created_at DESC").Find(&playlists).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "User playlists fetched successfully", playlists)
}

// GetPlaylistByID returns a playlist with its videos in membership order.
func GetPlaylistByID(c *gin.Context) {
	playlist, err := loadOwnedPlaylist(c, "view")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	videos, err := materializeVideos(playlist.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Playlist fetched successfully", gin.H{
		"playlist": playlist,
		"videos":   videos,
	})
}

func UpdatePlaylist(c *gin.Context) {
	playlist, err := loadOwnedPlaylist(c, "update")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var input playlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.ErrValidation("Invalid input"))
		return
	}

	if input.Name != "" {
		playlist.Name = input.Name
	}
	if input.Description != "" {
		playlist.Description = input.Description
	}

	if err := config.DB.Save(playlist).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Playlist updated successfully", playlist)
}

func DeletePlaylist(c *gin.Context) {
	playlist, err := loadOwnedPlaylist(c, "delete")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlist.ID).
			Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Playlist{}, "id = ?", playlist.ID).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Playlist deleted successfully", nil)
}

// AddVideoToPlaylist appends a member. Insertion order is display order.
// No existence check against the videos table: a reference to a video that
// later disappears is pruned by the video delete cascade.
func AddVideoToPlaylist(c *gin.Context) {
	playlist, err := loadOwnedPlaylist(c, "modify")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	videoID := c.Param("videoId")
	if !utils.ValidID(videoID) {
		utils.RespondError(c, utils.ErrInvalidID("videoId"))
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var nextPosition int
		err := tx.Model(&models.PlaylistVideo{}).
			Where("playlist_id = ?", playlist.ID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&nextPosition).Error
		if err != nil {
			return err
		}

		member := models.PlaylistVideo{
			PlaylistID: playlist.ID,
			VideoID:    videoID,
			Position:   nextPosition,
		}
		return tx.Create(&member).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondError(c, utils.ErrDuplicateMember())
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Video added to playlist successfully", playlist)
}

func RemoveVideoFromPlaylist(c *gin.Context) {
	playlist, err := loadOwnedPlaylist(c, "modify")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	videoID := c.Param("videoId")
	if !utils.ValidID(videoID) {
		utils.RespondError(c, utils.ErrInvalidID("videoId"))
		return
	}

	res := config.DB.
		Where("playlist_id = ? AND video_id = ?", playlist.ID, videoID).
		Delete(&models.PlaylistVideo{})
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.ErrMemberNotFound())
		return
	}

	utils.Respond(c, http.StatusOK, "Video removed from playlist successfully", playlist)
}

func loadOwnedPlaylist(c *gin.Context, action string) (*models.Playlist, error) {
	playlistID := c.Param("playlistId")
	if !utils.ValidID(playlistID) {
		return nil, utils.ErrInvalidID("playlistId")
	}

	var playlist models.Playlist
	if err := config.DB.First(&playlist, "id = ?", playlistID).Error; err != nil {
		return nil, utils.ErrNotFound("Playlist")
	}

	if playlist.OwnerID != authentication.UserID(c) {
		return nil, utils.ErrForbidden("You are not authorized to " + action + " this playlist")
	}
	return &playlist, nil
}

func materializeVideos(playlistID string) ([]models.Video, error) {
	var members []models.PlaylistVideo
	if err := config.DB.Where("playlist_id = ?", playlistID).
		Order("position").Find(&members).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.VideoID)
	}

	videos := make([]models.Video, 0, len(ids))
	if len(ids) == 0 {
		return videos, nil
	}

	var found []models.Video
	if err := config.DB.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
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
	return videos, nil
}
