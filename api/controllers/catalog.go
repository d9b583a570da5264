package controllers

import (
	"net/http"

	"github.com/farhanmaulana/cetakin-backend/api/responses"
	"github.com/farhanmaulana/cetakin-backend/internal/catalog"
)

type paperCatalogResponse struct {
	Papers  []catalog.PaperType `json:"papers"`
	Default *catalog.PaperType  `json:"default,omitempty"`
}

// CatalogPapers returns the paper types loaded at boot. An empty catalog
// is a valid response; the storefront renders it as "no options".
func CatalogPapers(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := paperCatalogResponse{Papers: svc.List()}
		if def, ok := svc.Default(); ok {
			resp.Default = &def
		}
		responses.WriteSuccess(w, resp)
	}
}
