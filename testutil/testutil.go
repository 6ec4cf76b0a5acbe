// Package testutil provides shared fixtures for handler tests: an isolated
// in-memory database, seeded users with tokens, and a fake media store.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"streamhive-backend/config"
	"streamhive-backend/controllers/authentication"
	"streamhive-backend/models"
	"streamhive-backend/services"
)

// SetupDB opens a fresh in-memory database, migrates the schema and points
// the process-wide config.DB at it.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.C.JWT.Secret = "test-secret"
	config.C.JWT.TTLHours = 1

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A shared in-memory database disappears with its last connection.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Video{},
		&models.Tweet{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.MediaDeletion{},
	))

	config.DB = db
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser seeds a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username + " test",
		Password: string(hashed),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Token signs a JWT for the seeded user.
func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := authentication.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

// Do performs a JSON request against the router. An empty token leaves the
// request unauthenticated.
func Do(t *testing.T, router http.Handler, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Envelope mirrors the uniform response envelope with the payload left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func Decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var envelope Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// DecodeData unmarshals the envelope payload into out.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	envelope := Decode(t, w)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
	return envelope
}

// FakeMedia is an in-process media store standing in for MinIO.
type FakeMedia struct {
	mu       sync.Mutex
	Uploads  []string
	Removed  []string
	FailWith error
}

func (f *FakeMedia) Upload(ctx context.Context, localPath, kind string) (*services.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	ref := path.Base(localPath)
	f.Uploads = append(f.Uploads, ref)
	result := &services.UploadResult{
		URL:         fmt.Sprintf("http://media.test/%s/%s", kind, ref),
		ResourceRef: ref,
	}
	if kind == services.MediaKindVideo {
		result.Duration = 42.5
	}
	return result, nil
}

func (f *FakeMedia) Remove(ctx context.Context, resourceRef, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.Removed = append(f.Removed, resourceRef)
	return nil
}

// UseFakeMedia installs a FakeMedia as the process-wide store.
func UseFakeMedia(t *testing.T) *FakeMedia {
	t.Helper()
	previous := services.Media
	fake := &FakeMedia{}
	services.Media = fake
	t.Cleanup(func() { services.Media = previous })
	return fake
}
