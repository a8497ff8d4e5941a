package util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const maxImageSize = 10 << 20

// S3Config - параметры S3-совместимого хранилища изображений
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // CDN или прямой адрес бакета, необязательно
	KeyPrefix string
}

// S3ImageStore хранит изображения товаров в публичном бакете
type S3ImageStore struct {
	s3         *s3.Client
	httpClient *http.Client
	bucket     string
	baseURL    string
	keyPrefix  string
}

// NewS3ImageStore возвращает nil, nil если хранилище не настроено -
// тогда изображения сохраняются по исходным URL
func NewS3ImageStore(cfg S3Config) (*S3ImageStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = endpoint + "/" + cfg.Bucket
	}

	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix == "" {
		prefix = "products"
	}

	return &S3ImageStore{
		s3:         client,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		bucket:     cfg.Bucket,
		baseURL:    baseURL,
		keyPrefix:  prefix,
	}, nil
}

// Upload кладёт объект с public-read ACL и возвращает его публичный URL
func (s *S3ImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (*entity.ProductImage, error) {
	key := s.keyPrefix + "/" + uuid.NewString() + imageExt(name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.s3.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 upload %s/%s: %w", s.bucket, key, err)
	}

	return &entity.ProductImage{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

// Rehost скачивает изображение по URL и перекладывает его в бакет.
// Уже размещённые у нас URL возвращаются как есть.
func (s *S3ImageStore) Rehost(ctx context.Context, sourceURL string) (*entity.ProductImage, error) {
	if strings.HasPrefix(sourceURL, s.baseURL+"/") {
		return &entity.ProductImage{URL: sourceURL, PublicID: strings.TrimPrefix(sourceURL, s.baseURL+"/")}, nil
	}

	u, err := url.Parse(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid image url %q", sourceURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return s.Upload(ctx, u.Path, contentType, bytes.NewReader(data), int64(len(data)))
}

func imageExt(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
		return ext
	}
	return ""
}
