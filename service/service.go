package service

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/config"
	"github.com/emzola/bibliodesk/internal/jsonlog"
	"github.com/emzola/bibliodesk/repository"
)

type Service interface {
	books
	borrows
	catalog
	reports
	watches
}

// Uploader is the part of the S3 upload manager the service needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Services defines a service layer.
type service struct {
	config   config.Config
	wg       *sync.WaitGroup
	logger   *jsonlog.Logger
	repo     repository.Repository
	store    *cache.Store
	uploader Uploader
}

// New creates a new instance of Service. uploader may be nil when summary
// exports are disabled.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository, store *cache.Store, uploader Uploader) *service {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}
	return &service{
		config:   cfg,
		wg:       wg,
		logger:   logger,
		repo:     repo,
		store:    store,
		uploader: uploader,
	}
}
