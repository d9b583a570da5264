package assets

import (
	"context"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/imagehost"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"github.com/farhanmaulana/cetakin-backend/pkg/metrics"
)

// DefaultMaxAssets caps the design assets on one line item.
const DefaultMaxAssets = 5

// UploadFile is one user-selected file in a batch, in selection order.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadResult describes one successfully hosted file.
type UploadResult struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// UploadFailure describes one file the host rejected. The batch continues
// past it; there are no all-or-nothing semantics.
type UploadFailure struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// BatchResult reports a finished upload batch. Uploaded preserves the
// original selection order.
type BatchResult struct {
	Uploaded []UploadResult  `json:"uploaded"`
	Failed   []UploadFailure `json:"failed"`
}

// Service orchestrates design-asset uploads against the image host.
type Service interface {
	UploadBatch(ctx context.Context, currentCount int, files []UploadFile) (*BatchResult, error)
	MaxAssets() int
}

type service struct {
	uploader  imagehost.Uploader
	maxAssets int
	metrics   *metrics.StorefrontMetrics
	logg      *logger.Logger
}

// NewService builds the asset service over the given image host client.
func NewService(uploader imagehost.Uploader, maxAssets int, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if uploader == nil {
		return nil, fmt.Errorf("image host uploader required")
	}
	if maxAssets <= 0 {
		maxAssets = DefaultMaxAssets
	}
	return &service{
		uploader:  uploader,
		maxAssets: maxAssets,
		metrics:   m,
		logg:      logg,
	}, nil
}

func (s *service) MaxAssets() int {
	return s.maxAssets
}

// UploadBatch rejects the whole batch when it would push the asset list past
// the cap; otherwise files are uploaded one by one in selection order and a
// failed file is skipped, not fatal.
func (s *service) UploadBatch(ctx context.Context, currentCount int, files []UploadFile) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files to upload")
	}
	if currentCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "current asset count cannot be negative")
	}
	if currentCount+len(files) > s.maxAssets {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("asset limit exceeded: at most %d design assets per order", s.maxAssets))
	}

	result := &BatchResult{}
	for i, file := range files {
		url, err := s.uploader.Upload(ctx, file.Name, file.Content)
		if err != nil {
			if s.logg != nil {
				fctx := s.logg.WithField(ctx, "file_name", file.Name)
				s.logg.Warn(fctx, "asset upload failed, skipping file")
			}
			s.metrics.IncUpload("failed")
			s.metrics.IncUploadFailure("host_rejected")
			result.Failed = append(result.Failed, UploadFailure{
				Index:    i,
				FileName: file.Name,
				Reason:   err.Error(),
			})
			continue
		}
		s.metrics.IncUpload("ok")
		result.Uploaded = append(result.Uploaded, UploadResult{
			Index:    i,
			FileName: file.Name,
			URL:      url,
		})
	}
	return result, nil
}

// AppendLink adds a manually pasted URL to the asset list, bypassing upload.
func AppendLink(list []string, raw string, maxAssets int) ([]string, error) {
	if maxAssets <= 0 {
		maxAssets = DefaultMaxAssets
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset link cannot be empty")
	}
	if len(list) >= maxAssets {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("asset limit exceeded: at most %d design assets per order", maxAssets))
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, trimmed)
	return out, nil
}

// Remove drops the asset at index, preserving the relative order of the rest.
func Remove(list []string, index int) ([]string, error) {
	if index < 0 || index >= len(list) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset index out of range")
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return out, nil
}
