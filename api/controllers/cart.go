package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/farhanmaulana/cetakin-backend/api/responses"
	"github.com/farhanmaulana/cetakin-backend/api/validators"
	"github.com/farhanmaulana/cetakin-backend/internal/cart"
	"github.com/farhanmaulana/cetakin-backend/internal/orders"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

type cartResponse struct {
	Items []orders.LineItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func newCartResponse(items []orders.LineItem) cartResponse {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return cartResponse{Items: items, Total: total}
}

// CartAdd composes a line item and submits it to the buyer's cart.
func CartAdd(composer orders.Service, gateway cart.Service, logg *logger.Logger) http.HandlerFunc {
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

		item, err := composer.Compose(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submitted, err := gateway.Submit(r.Context(), item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, lineItemResponse{
			Item:     *submitted,
			Subtotal: submitted.Subtotal(),
		})
	}
}

// CartFetch returns the buyer's cart with the derived total.
func CartFetch(gateway cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := gateway.Fetch(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(items))
	}
}

// CartRemove deletes one line item by its order number.
func CartRemove(gateway cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNo := strings.TrimSpace(chi.URLParam(r, "orderNo"))
		if orderNo == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		if err := gateway.Remove(r.Context(), uid, orderNo); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
