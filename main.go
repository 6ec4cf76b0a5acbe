package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/controllers/comments"
	"streamhive-backend/controllers/likes"
	"streamhive-backend/controllers/playlists"
	"streamhive-backend/controllers/subscriptions"
	"streamhive-backend/controllers/tweets"
	"streamhive-backend/controllers/videos"
	"streamhive-backend/models"
	"streamhive-backend/services"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	config.InitLogger()

	if err := config.InitDB(); err != nil {
		logrus.Fatalf("connect database: %v", err)
	}

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Video{},
		&models.Tweet{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.MediaDeletion{},
	)
	if err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	if err := services.InitMedia(); err != nil {
		logrus.Fatalf("connect media store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := services.NewCleanupWorker(config.DB, services.Media, time.Minute)
	go worker.Run(ctx)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(SetupRouter())

	logrus.Infof("listening on :%s", config.C.Server.Port)
	if err := http.ListenAndServe(":"+config.C.Server.Port, handler); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

// SetupRouter wires every route under /api/v1.
func SetupRouter() *gin.Engine {
	router := gin.Default()
	auth := authentication.AuthMiddleware()

	router.GET("/healthz", healthz)

	api := router.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", authentication.Register)
	users.POST("/login", authentication.Login)
	users.GET("/c/:username", authentication.ChannelProfile)
	users.GET("/me", auth, authentication.CurrentUser)
	users.PATCH("/me/avatar", auth, authentication.UpdateAvatar)

	api.GET("/videos", videos.GetAllVideos)
	api.GET("/videos/:videoId", videos.GetVideoByID)
	api.POST("/videos", auth, videos.PublishVideo)
	api.PATCH("/videos/:videoId", auth, videos.UpdateVideo)
	api.DELETE("/videos/:videoId", auth, videos.DeleteVideo)
	api.PATCH("/videos/:videoId/toggle-publish", auth, videos.TogglePublishStatus)

	api.POST("/tweets", auth, tweets.CreateTweet)
	api.GET("/tweets/user/:userId", auth, tweets.GetUserTweets)
	api.PATCH("/tweets/:tweetId", auth, tweets.UpdateTweet)
	api.DELETE("/tweets/:tweetId", auth, tweets.DeleteTweet)

	api.GET("/comments/v/:videoId", comments.GetVideoComments)
	api.GET("/comments/t/:tweetId", comments.GetTweetComments)
	api.POST("/comments/v/:videoId", auth, comments.AddVideoComment)
	api.POST("/comments/t/:tweetId", auth, comments.AddTweetComment)
	api.PATCH("/comments/:commentId", auth, comments.UpdateComment)
	api.DELETE("/comments/:commentId", auth, comments.DeleteComment)

	api.POST("/likes/toggle/v/:videoId", auth, likes.ToggleVideoLike)
	api.POST("/likes/toggle/c/:commentId", auth, likes.ToggleCommentLike)
	api.POST("/likes/toggle/t/:tweetId", auth, likes.ToggleTweetLike)
	api.GET("/likes/videos", auth, likes.GetLikedVideos)

	api.POST("/subscriptions/c/:channelId", auth, subscriptions.ToggleSubscription)
	api.GET("/subscriptions/c/:channelId/subscribers", auth, subscriptions.GetChannelSubscribers)
	api.GET("/subscriptions/u/:subscriberId", auth, subscriptions.GetSubscribedChannels)

	api.POST("/playlists", auth, playlists.CreatePlaylist)
	api.GET("/playlists/user/:userId", auth, playlists.GetUserPlaylists)
	api.GET("/playlists/:playlistId", auth, playlists.GetPlaylistByID)
	api.PATCH("/playlists/:playlistId", auth, playlists.UpdatePlaylist)
	api.DELETE("/playlists/:playlistId", auth, playlists.DeletePlaylist)
	api.POST("/playlists/:playlistId/videos/:videoId", auth, playlists.AddVideoToPlaylist)
	api.DELETE("/playlists/:playlistId/videos/:videoId", auth, playlists.RemoveVideoFromPlaylist)

	return router
}

func healthz(c *gin.Context) {
	sqlDB, err := config.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
