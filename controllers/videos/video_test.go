package videos_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"streamhive-backend/controllers/authentication"
	"streamhive-backend/controllers/videos"
	"streamhive-backend/models"
	"streamhive-backend/testutil"
)

func newRouter() *gin.Engine {
	router := gin.New()
	auth := authentication.AuthMiddleware()
	router.GET("/api/v1/videos", videos.GetAllVideos)
	router.GET("/api/v1/videos/:videoId", videos.GetVideoByID)
	router.POST("/api/v1/videos", auth, videos.PublishVideo)
	router.PATCH("/api/v1/videos/:videoId", auth, videos.UpdateVideo)
	router.DELETE("/api/v1/videos/:videoId", auth, videos.DeleteVideo)
	router.PATCH("/api/v1/videos/:videoId/toggle-publish", auth, videos.TogglePublishStatus)
	return router
}

func createVideo(t *testing.T, db *gorm.DB, owner models.User, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		Title:       title,
		Description: "about " + title,
		VideoFile:   "http://media.test/video/" + title + ".mp4",
		Thumbnail:   "http://media.test/image/" + title + ".png",
		Duration:    42.5,
		OwnerID:     owner.ID,
		IsPublished: published,
	}
	require.NoError(t, db.Create(&video).Error)
	return video
}

type videoPage struct {
	Videos     []models.Video `json:"videos"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

func TestGetAllVideos_Pagination(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	router := newRouter()

	for i := 0; i < 12; i++ {
		createVideo(t, db, owner, fmt.Sprintf("video-%02d", i), true)
	}
	// Drafts never show up in listings.
	createVideo(t, db, owner, "draft", false)

	w := testutil.Do(t, router, http.MethodGet, "/api/v1/videos?page=2&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page videoPage
	testutil.DecodeData(t, w, &page)
	require.Len(t, page.Videos, 5)
	require.EqualValues(t, 12, page.Total)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 5, page.Limit)
	require.Equal(t, 3, page.TotalPages)
}

func TestGetAllVideos_DefaultsAndSort(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	router := newRouter()

	a := createVideo(t, db, owner, "alpha", true)
	b := createVideo(t, db, owner, "beta", true)
	require.NoError(t, db.Model(&a).Update("views", 3).Error)
	require.NoError(t, db.Model(&b).Update("views", 9).Error)

	// Bogus pagination falls back to page=1, limit=10.
	w := testutil.Do(t, router, http.MethodGet, "/api/v1/videos?page=0&limit=-4", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page videoPage
	testutil.DecodeData(t, w, &page)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 10, page.Limit)

	w = testutil.Do(t, router, http.MethodGet, "/api/v1/videos?sortBy=views&sortType=desc", nil, "")
	testutil.DecodeData(t, w, &page)
	require.Equal(t, "beta", page.Videos[0].Title)

	// Unknown sort columns cannot reach the query.
	w = testutil.Do(t, router, http.MethodGet, "/api/v1/videos?sortBy=password;drop", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetAllVideos_SearchAndOwnerFilter(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	router := newRouter()

	createVideo(t, db, alice, "Cooking Pasta", true)
	createVideo(t, db, bob, "cooking ramen", true)
	createVideo(t, db, bob, "woodworking", true)

	w := testutil.Do(t, router, http.MethodGet, "/api/v1/videos?query=COOKING", nil, "")
	var page videoPage
	testutil.DecodeData(t, w, &page)
	require.EqualValues(t, 2, page.Total)

	w = testutil.Do(t, router, http.MethodGet, "/api/v1/videos?userId="+bob.ID, nil, "")
	testutil.DecodeData(t, w, &page)
	require.EqualValues(t, 2, page.Total)

	w = testutil.Do(t, router, http.MethodGet, "/api/v1/videos?userId=not-a-uuid", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishVideo_Multipart(t *testing.T) {
	db := testutil.SetupDB(t)
	fake := testutil.UseFakeMedia(t)
	owner := testutil.CreateUser(t, db, "alice")
	router := newRouter()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "My Launch"))
	require.NoError(t, form.WriteField("description", "First upload"))
	part, err := form.CreateFormFile("videoFile", "launch.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-video-bytes"))
	require.NoError(t, err)
	part, err = form.CreateFormFile("thumbnail", "launch.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, owner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var video models.Video
	testutil.DecodeData(t, w, &video)
	require.Equal(t, "My Launch", video.Title)
	require.Equal(t, owner.ID, video.OwnerID)
	require.True(t, video.IsPublished)
	require.InDelta(t, 42.5, video.Duration, 0.001)
	require.NotEmpty(t, video.VideoFile)
	require.NotEmpty(t, video.Thumbnail)
	require.Len(t, fake.Uploads, 2)
}

func TestPublishVideo_RequiresFields(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.UseFakeMedia(t)
	owner := testutil.CreateUser(t, db, "alice")
	router := newRouter()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "No media"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, owner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Video and thumbnail required", testutil.Decode(t, w).Message)
}

func TestGetVideoByID_IncrementsViews(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()

	var got models.Video
	w := testutil.Do(t, router, http.MethodGet, "/api/v1/videos/"+video.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &got)
	require.EqualValues(t, 1, got.Views)

	w = testutil.Do(t, router, http.MethodGet, "/api/v1/videos/"+video.ID, nil, "")
	testutil.DecodeData(t, w, &got)
	require.EqualValues(t, 2, got.Views)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.EqualValues(t, 2, stored.Views)
}

func TestUpdateVideo_PartialAndOwnership(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	intruder := testutil.CreateUser(t, db, "bob")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()

	w := testutil.Do(t, router, http.MethodPatch, "/api/v1/videos/"+video.ID,
		gin.H{"title": "hijacked"}, testutil.Token(t, intruder))
	require.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.Equal(t, "launch", stored.Title)

	// Empty fields are left untouched.
	w = testutil.Do(t, router, http.MethodPatch, "/api/v1/videos/"+video.ID,
		gin.H{"title": "relaunch", "description": ""}, testutil.Token(t, owner))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.Equal(t, "relaunch", stored.Title)
	require.Equal(t, "about launch", stored.Description)
}

func patchThumbnail(t *testing.T, router http.Handler, videoID, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("thumbnail", "replacement.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateVideo_ReplaceThumbnailEnqueuesOldDeletion(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.UseFakeMedia(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()

	w := patchThumbnail(t, router, video.ID, testutil.Token(t, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.NotEqual(t, video.Thumbnail, stored.Thumbnail)

	var task models.MediaDeletion
	require.NoError(t, db.First(&task).Error)
	require.Equal(t, "launch.png", task.ResourceRef)
}

func TestUpdateVideo_ThumbnailReplacementIsAtomic(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.UseFakeMedia(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()

	// Sabotage the deletion-task insert: if it cannot commit, the thumbnail
	// swap must roll back with it, or the stored URL would point at an
	// object queued for destruction.
	require.NoError(t, db.Migrator().DropTable(&models.MediaDeletion{}))

	w := patchThumbnail(t, router, video.ID, testutil.Token(t, owner))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.Equal(t, video.Thumbnail, stored.Thumbnail)
}

func TestDeleteVideo_CascadesAndEnqueuesMediaDeletion(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()

	comment := models.Comment{
		Content: "bye", TargetKind: models.TargetVideo, TargetID: video.ID, OwnerID: viewer.ID,
	}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Create(&models.Like{
		LikedByID: viewer.ID, TargetKind: models.TargetVideo, TargetID: video.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Like{
		LikedByID: owner.ID, TargetKind: models.TargetComment, TargetID: comment.ID,
	}).Error)

	playlist := models.Playlist{Name: "watchlist", OwnerID: viewer.ID}
	require.NoError(t, db.Create(&playlist).Error)
	require.NoError(t, db.Create(&models.PlaylistVideo{
		PlaylistID: playlist.ID, VideoID: video.ID,
	}).Error)

	w := testutil.Do(t, router, http.MethodDelete, "/api/v1/videos/"+video.ID,
		nil, testutil.Token(t, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Video{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.PlaylistVideo{}).Count(&count).Error)
	require.Zero(t, count)

	// The playlist itself survives; only the membership row is pruned.
	require.NoError(t, db.Model(&models.Playlist{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Remote media removal is deferred to durable tasks.
	var tasks []models.MediaDeletion
	require.NoError(t, db.Order("kind").Find(&tasks).Error)
	require.Len(t, tasks, 2)
	refs := []string{tasks[0].ResourceRef, tasks[1].ResourceRef}
	require.Contains(t, refs, "launch.mp4")
	require.Contains(t, refs, "launch.png")
}

func TestTogglePublishStatus(t *testing.T) {
	db := testutil.SetupDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	video := createVideo(t, db, owner, "launch", true)
	router := newRouter()
	token := testutil.Token(t, owner)
	target := "/api/v1/videos/" + video.ID + "/toggle-publish"

	w := testutil.Do(t, router, http.MethodPatch, target, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.False(t, stored.IsPublished)

	w = testutil.Do(t, router, http.MethodPatch, target, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&stored, "id = ?", video.ID).Error)
	require.True(t, stored.IsPublished)
}
