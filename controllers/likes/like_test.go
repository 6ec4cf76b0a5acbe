package likes_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"streamhive-backend/controllers/authentication"
	"streamhive-backend/controllers/likes"
	"streamhive-backend/models"
	"streamhive-backend/testutil"
)

func newRouter() *gin.Engine {
	router := gin.New()
	auth := authentication.AuthMiddleware()
	router.POST("/api/v1/likes/toggle/v/:videoId", auth, likes.ToggleVideoLike)
	router.POST("/api/v1/likes/toggle/c/:commentId", auth, likes.ToggleCommentLike)
	router.POST("/api/v1/likes/toggle/t/:tweetId", auth, likes.ToggleTweetLike)
	router.GET("/api/v1/likes/videos", auth, likes.GetLikedVideos)
	return router
}

func createVideo(t *testing.T, db *gorm.DB, owner models.User, title string) models.Video {
	t.Helper()
	video := models.Video{
		Title:       title,
		Description: "about " + title,
		VideoFile:   "http://media.test/video/" + title + ".mp4",
		Thumbnail:   "http://media.test/image/" + title + ".png",
		Duration:    42.5,
		OwnerID:     owner.ID,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&video).Error)
	return video
}

func TestToggleVideoLike_FlipsOnEachCall(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")
	video := createVideo(t, db, owner, "launch")
	router := newRouter()
	token := testutil.Token(t, viewer)
	target := "/api/v1/likes/toggle/v/" + video.ID

	likeCount := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Like{}).Count(&n).Error)
		return n
	}

	w := testutil.Do(t, router, http.MethodPost, target, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Video liked successfully", testutil.Decode(t, w).Message)
	require.EqualValues(t, 1, likeCount())

	w = testutil.Do(t, router, http.MethodPost, target, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Video unliked successfully", testutil.Decode(t, w).Message)
	require.EqualValues(t, 0, likeCount())

	w = testutil.Do(t, router, http.MethodPost, target, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	require.EqualValues(t, 1, likeCount())
}

func TestToggleLike_StateField(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch")
	router := newRouter()
	token := testutil.Token(t, owner)
	target := "/api/v1/likes/toggle/v/" + video.ID

	var payload struct {
		State string `json:"state"`
	}

	w := testutil.Do(t, router, http.MethodPost, target, nil, token)
	testutil.DecodeData(t, w, &payload)
	require.Equal(t, "added", payload.State)

	w = testutil.Do(t, router, http.MethodPost, target, nil, token)
	testutil.DecodeData(t, w, &payload)
	require.Equal(t, "removed", payload.State)
}

func TestToggleLike_RejectsBadAndMissingTargets(t *testing.T) {
	db := testutil.SetupDB(t)
	token := testutil.Token(t, testutil.CreateUser(t, db, "alice"))
	router := newRouter()

	w := testutil.Do(t, router, http.MethodPost, "/api/v1/likes/toggle/v/not-a-uuid", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid videoId", testutil.Decode(t, w).Message)

	w = testutil.Do(t, router, http.MethodPost, "/api/v1/likes/toggle/v/"+uuid.NewString(), nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Video not found", testutil.Decode(t, w).Message)
}

func TestToggleCommentAndTweetLike(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch")
	router := newRouter()
	token := testutil.Token(t, owner)

	tweet := models.Tweet{Content: "hello", OwnerID: owner.ID}
	require.NoError(t, db.Create(&tweet).Error)
	comment := models.Comment{
		Content: "first", TargetKind: models.TargetVideo, TargetID: video.ID, OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(&comment).Error)

	w := testutil.Do(t, router, http.MethodPost, "/api/v1/likes/toggle/c/"+comment.ID, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Comment liked successfully", testutil.Decode(t, w).Message)

	w = testutil.Do(t, router, http.MethodPost, "/api/v1/likes/toggle/t/"+tweet.ID, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Tweet liked successfully", testutil.Decode(t, w).Message)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestGetLikedVideos_MostRecentFirst(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")
	first := createVideo(t, db, owner, "first")
	second := createVideo(t, db, owner, "second")
	router := newRouter()
	token := testutil.Token(t, viewer)

	// Seed likes directly so the ordering timestamps are unambiguous.
	now := time.Now()
	require.NoError(t, db.Create(&models.Like{
		LikedByID: viewer.ID, TargetKind: models.TargetVideo, TargetID: first.ID,
		CreatedAt: now.Add(-time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.Like{
		LikedByID: viewer.ID, TargetKind: models.TargetVideo, TargetID: second.ID,
		CreatedAt: now,
	}).Error)

	w := testutil.Do(t, router, http.MethodGet, "/api/v1/likes/videos", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Video
	testutil.DecodeData(t, w, &listed)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID)
	require.Equal(t, first.ID, listed[1].ID)

	// Owner projection never leaks the password hash.
	var raw []map[string]json.RawMessage
	testutil.DecodeData(t, w, &raw)
	var ownerFields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw[0]["owner"], &ownerFields))
	require.Contains(t, ownerFields, "username")
	require.NotContains(t, ownerFields, "password")
}
