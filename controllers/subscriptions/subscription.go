package subscriptions

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

// ToggleSubscription flips membership of (caller, channel) in the
// subscription relation. Same delete-first scheme as like toggles.
func ToggleSubscription(c *gin.Context) {
	channelID := c.Param("channelId")
	if !utils.ValidID(channelID) {
		utils.RespondError(c, utils.ErrInvalidID("channelId"))
		return
	}

	userID := authentication.UserID(c)
	if channelID == userID {
		utils.RespondError(c, utils.ErrInvalidOperation("You cannot subscribe to yourself"))
		return
	}

	var channel models.User
	if err := config.DB.Select("id").First(&channel, "id = ?", channelID).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("Channel"))
		return
	}

	res := config.DB.
		Where("subscriber_id = ? AND channel_id = ?", userID, channelID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.Respond(c, http.StatusOK, "Unsubscribed successfully", gin.H{"state": "removed"})
		return
	}

	subscription := models.Subscription{
		SubscriberID: userID,
		ChannelID:    channelID,
	}
	err := config.DB.Create(&subscription).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if err := config.DB.
			Where("subscriber_id = ? AND channel_id = ?", userID, channelID).
			Delete(&models.Subscription{}).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.Respond(c, http.StatusOK, "Unsubscribed successfully", gin.H{"state": "removed"})
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "Subscribed successfully", gin.H{
		"state":        "added",
		"subscription": subscription,
	})
}

// GetChannelSubscribers lists who subscribes to a channel.
func GetChannelSubscribers(c *gin.Context) {
	channelID := c.Param("channelId")
	if !utils.ValidID(channelID) {
		utils.RespondError(c, utils.ErrInvalidID("channelId"))
		return
	}

	var channel models.User
	if err := config.DB.Select("id").First(&channel, "id = ?", channelID).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("Channel"))
		return
	}

	var subscribers []models.Subscription
	err := config.DB.
		Where("channel_id = ?", channelID).
		Preload("Subscriber", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		Find(&subscribers).Error
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Channel subscribers fetched successfully", subscribers)
}

// GetSubscribedChannels lists the channels a user subscribes to. The list
// is private: only its owner may read it.
func GetSubscribedChannels(c *gin.Context) {
	subscriberID := c.Param("subscriberId")
	if !utils.ValidID(subscriberID) {
		utils.RespondError(c, utils.ErrInvalidID("subscriberId"))
		return
	}
	if subscriberID != authentication.UserID(c) {
		utils.RespondError(c, utils.ErrForbidden("You are not authorized to view this subscriber list"))
		return
	}

	var subscriptions []models.Subscription
	err := config.DB.
		Where("subscriber_id = ?", subscriberID).
		Preload("Channel", func(db *gorm.DB) *gorm.DB { return db.Select(models.UserPublicFields) }).
		Find(&subscriptions).Error
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Subscribed channels fetched successfully", subscriptions)
}
