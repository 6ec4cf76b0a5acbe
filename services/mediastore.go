package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"streamhive-backend/config"
)

// Resource kinds accepted by the media store.
const (
	MediaKindVideo = "video"
	MediaKindImage = "image"
)

type UploadResult struct {
	URL         string
	ResourceRef string
	Duration    float64 // seconds, zero for images
}

// MediaStore is the media-hosting collaborator: it takes a local file path
// and hands back a durable URL plus derived metadata.
type MediaStore interface {
	Upload(ctx context.Context, localPath, kind string) (*UploadResult, error)
	Remove(ctx context.Context, resourceRef, kind string) error
}

// Media is the process-wide store. Tests swap in a fake.
var Media MediaStore

type MinioStore struct {
	client      *minio.Client
	videoBucket string
	imageBucket string
	baseURL     string
}

func InitMedia() error {
	cfg := config.C.Minio

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return errors.WithMessage(err, "create minio client")
	}

	logrus.WithField("endpoint", cfg.Endpoint).Info("connected to media store")

	Media = &MinioStore{
		client:      client,
		videoBucket: cfg.VideoBucket,
		imageBucket: cfg.ImageBucket,
		baseURL:     cfg.PublicBaseURL,
	}
	return nil
}

func (s *MinioStore) bucketFor(kind string) string {
	if kind == MediaKindVideo {
		return s.videoBucket
	}
	return s.imageBucket
}

func (s *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.WithMessage(err, "check bucket")
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.WithMessage(err, "create bucket")
		}
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, localPath, kind string) (*UploadResult, error) {
	bucket := s.bucketFor(kind)
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return nil, err
	}

	ext := filepath.Ext(localPath)
	objectName := uuid.NewString() + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, bucket, objectName, localPath,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, errors.WithMessagef(err, "upload %s", objectName)
	}

	result := &UploadResult{
		URL:         fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, objectName),
		ResourceRef: objectName,
	}

	if kind == MediaKindVideo {
		duration, err := probeDuration(localPath)
		if err != nil {
			// Duration is derived metadata, not a reason to fail the upload.
			logrus.WithError(err).Warnf("could not probe duration of %s", localPath)
		}
		result.Duration = duration
	}

	return result, nil
}

func (s *MinioStore) Remove(ctx context.Context, resourceRef, kind string) error {
	return s.client.RemoveObject(ctx, s.bucketFor(kind), resourceRef, minio.RemoveObjectOptions{})
}

// ResourceRefFromURL derives the remote object name from a stored media URL.
func ResourceRefFromURL(url string) string {
	return path.Base(url)
}

func probeDuration(localPath string) (float64, error) {
	out, err := ffmpeg.Probe(localPath)
	if err != nil {
		return 0, errors.WithMessage(err, "ffprobe")
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, errors.WithMessage(err, "parse ffprobe output")
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "parse duration")
	}
	return duration, nil
}
