package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farhanmaulana/cetakin-backend/api/middleware"
	"github.com/farhanmaulana/cetakin-backend/api/responses"
	"github.com/farhanmaulana/cetakin-backend/api/validators"
	"github.com/farhanmaulana/cetakin-backend/internal/orders"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

type lineItemResponse struct {
	Item     orders.LineItem `json:"item"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

// OrdersQuote composes and prices a line item without persisting it, so
// the storefront can show the derived subtotal while the buyer edits.
func OrdersQuote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orders.ComposeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Compose(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lineItemResponse{
			Item:     *item,
			Subtotal: item.Subtotal(),
		})
	}
}
