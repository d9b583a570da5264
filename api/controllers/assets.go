package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/farhanmaulana/cetakin-backend/api/responses"
	"github.com/farhanmaulana/cetakin-backend/internal/assets"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

const uploadFormMemory = 8 << 20

// AssetsUpload receives a multipart batch of design files and pushes them
// to the image host in selection order. The form carries the files under
// "files" and the number of assets already attached under "current_count".
func AssetsUpload(svc assets.Service, cfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(uploadFormMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		currentCount := 0
		if raw := r.FormValue("current_count"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "current_count must be a non-negative integer"))
				return
			}
			currentCount = parsed
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no files in upload"))
			return
		}

		files := make([]assets.UploadFile, 0, len(headers))
		for _, header := range headers {
			if cfg.MaxFileSizeByte > 0 && header.Size > cfg.MaxFileSizeByte {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("%s exceeds the %d byte file limit", header.Filename, cfg.MaxFileSizeByte)))
				return
			}
			file, err := header.Open()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file"))
				return
			}
			defer file.Close()
			files = append(files, assets.UploadFile{Name: header.Filename, Content: file})
		}

		result, err := svc.UploadBatch(r.Context(), currentCount, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
