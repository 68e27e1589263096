package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nmorozova/platefeed/backend/config"
)

// ImageService stores recipe and avatar images. Clients send images inline
// as data URLs (data:image/png;base64,...); the decoded bytes go to S3 and
// the public URL is what gets persisted on the entity.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// StoreDataURL decodes a base64 data URL and uploads it under the given
// prefix ("recipes" or "avatars"). Anything that is not a data URL is
// assumed to already be a stored reference and returned unchanged.
func (s *ImageService) StoreDataURL(ctx context.Context, dataURL, prefix string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:image") {
		return dataURL, nil
	}

	header, encoded, found := strings.Cut(dataURL, ";base64,")
	if !found {
		v := NewValidationError()
		v.Add("image", "Invalid image format.")
		return "", v
	}

	ext := "png"
	if _, format, ok := strings.Cut(header, "data:image/"); ok && format != "" {
		ext = format
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		v := NewValidationError()
		v.Add("image", "Invalid base64 image data.")
		return "", v
	}

	fileName := fmt.Sprintf("%s/%s.%s", prefix, uuid.New().String(), ext)
	return s.upload(ctx, data, fileName, "image/"+ext)
}

func (s *ImageService) upload(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	if s.s3Config == nil {
		return "", fmt.Errorf("image storage is not configured")
	}

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Debug().Str("url", publicURL).Msg("uploaded image to S3")

	return publicURL, nil
}
