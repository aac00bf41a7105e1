package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/gabriel-vasile/mimetype"
)

type reports interface {
	ExportBorrowSummary(ctx context.Context) (string, error)
	StartBorrowSummaryExport() error
}

// ExportBorrowSummary service renders every page of the borrow summary as
// CSV, uploads it to the configured bucket and returns the object key.
func (s *service) ExportBorrowSummary(ctx context.Context) (string, error) {
	if !s.config.ExportEnabled() || s.uploader == nil {
		return "", ErrExportDisabled
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Book Title", "ISBN", "Total Quantity Borrowed"})
	filters := data.Filters{Page: 1, Limit: data.MaxLimit}
	for {
		page, err := s.ListBorrowSummary(ctx, filters)
		if err != nil {
			return "", err
		}
		for _, entry := range page.Items {
			w.Write([]string{entry.Title(), entry.ISBN(), strconv.Itoa(entry.TotalQuantity)})
		}
		if filters.Page >= page.Pagination.TotalPages {
			break
		}
		filters.Page++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(buf.Bytes())
	if !validator.Mime(mtype, "text/csv", "text/plain") {
		return "", ErrUnsupportedMediaType
	}
	key := s.config.S3.Prefix + "borrow-summary-" + time.Now().UTC().Format("20060102T150405Z") + ".csv"
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.config.S3.Bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buf.Bytes()),
		ContentLength:      int64(buf.Len()),
		ContentType:        aws.String(mtype.String()),
		ContentDisposition: aws.String("attachment"),
	})
	if err != nil {
		return "", err
	}
	s.logger.PrintInfo("borrow summary exported", map[string]string{
		"bucket": s.config.S3.Bucket,
		"key":    key,
	})
	return key, nil
}

// StartBorrowSummaryExport runs ExportBorrowSummary in the background.
func (s *service) StartBorrowSummaryExport() error {
	if !s.config.ExportEnabled() || s.uploader == nil {
		return ErrExportDisabled
	}
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := s.ExportBorrowSummary(ctx); err != nil {
			s.logger.PrintError(err, map[string]string{"task": "export borrow summary"})
		}
	})
	return nil
}
