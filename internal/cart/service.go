package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/farhanmaulana/cetakin-backend/internal/orders"
	"github.com/farhanmaulana/cetakin-backend/pkg/docstore"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"github.com/farhanmaulana/cetakin-backend/pkg/metrics"
)

// cacheTTL bounds how long a cached cart snapshot may serve reads before
// it is rebuilt from the document store.
const cacheTTL = 30 * time.Minute

// remoteStore is the slice of the document store the cart gateway uses.
type remoteStore interface {
	Create(ctx context.Context, path string, doc any) error
	ListPrefix(ctx context.Context, prefix string) ([]bson.Raw, error)
	Delete(ctx context.Context, path string) error
}

// cacheStore is the slice of the redis client the cart gateway uses.
type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// Service is the cart submission gateway. The document store is the
// authoritative copy; redis only caches read snapshots.
type Service interface {
	Submit(ctx context.Context, item *orders.LineItem) (*orders.LineItem, error)
	Fetch(ctx context.Context, userID uuid.UUID) ([]orders.LineItem, error)
	Remove(ctx context.Context, userID uuid.UUID, orderNo string) error
}

type service struct {
	remote  remoteStore
	cache   cacheStore
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the cart gateway against the document store and the
// read cache.
func NewService(remote remoteStore, cache cacheStore, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart: document store is required")
	}
	if cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart: cache is required")
	}
	return &service{
		remote:  remote,
		cache:   cache,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Submit persists the line item under users/{uid}/cart/{orderNo}. The
// remote write happens first; a remote failure leaves nothing behind
// locally. An order-number collision gets one fresh suffix before the
// submission is declared a conflict.
func (s *service) Submit(ctx context.Context, item *orders.LineItem) (*orders.LineItem, error) {
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item is required")
	}
	if item.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in before adding to cart")
	}
	if strings.TrimSpace(item.OrderNo) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item has no order number")
	}

	uid := item.UserID.String()
	err := s.remote.Create(ctx, docstore.CartItemPath(uid, item.OrderNo), encodeLineItem(item))
	if errors.Is(err, docstore.ErrDuplicate) {
		item.OrderNo = orders.NewOrderNumber(s.now().UTC())
		err = s.remote.Create(ctx, docstore.CartItemPath(uid, item.OrderNo), encodeLineItem(item))
		if errors.Is(err, docstore.ErrDuplicate) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number is already taken")
		}
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart item")
	}

	s.invalidateCache(ctx, uid)
	s.metrics.IncOrderSubmitted(item.Detail.Service)
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNo(ctx, item.OrderNo), "cart item submitted")
	}
	return item, nil
}

// Fetch returns the user's cart, serving the cached snapshot when one is
// fresh and rebuilding it from the document store otherwise.
func (s *service) Fetch(ctx context.Context, userID uuid.UUID) ([]orders.LineItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view the cart")
	}

	uid := userID.String()
	if cached, err := s.cache.Get(ctx, s.cache.CartKey(uid)); err == nil {
		var items []orders.LineItem
		if jsonErr := json.Unmarshal([]byte(cached), &items); jsonErr == nil {
			return items, nil
		}
		// A corrupt snapshot is dropped and rebuilt below.
		s.invalidateCache(ctx, uid)
	}

	raws, err := s.remote.ListPrefix(ctx, docstore.CartPrefix(uid))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	items := make([]orders.LineItem, 0, len(raws))
	for _, raw := range raws {
		var doc lineItemDoc
		if err := bson.Unmarshal(raw, &doc); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "skipping undecodable cart document", err)
			}
			continue
		}
		item, err := decodeLineItem(doc)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "skipping malformed cart document", err)
			}
			continue
		}
		items = append(items, item)
	}

	if encoded, err := json.Marshal(items); err == nil {
		if cacheErr := s.cache.Set(ctx, s.cache.CartKey(uid), string(encoded), cacheTTL); cacheErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "caching cart snapshot failed")
		}
	}
	return items, nil
}

// Remove deletes one line item from the user's cart.
func (s *service) Remove(ctx context.Context, userID uuid.UUID, orderNo string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to change the cart")
	}
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	uid := userID.String()
	err := s.remote.Delete(ctx, docstore.CartItemPath(uid, orderNo))
	if errors.Is(err, docstore.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing cart item")
	}

	s.invalidateCache(ctx, uid)
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNo(ctx, orderNo), "cart item removed")
	}
	return nil
}

func (s *service) invalidateCache(ctx context.Context, uid string) {
	if err := s.cache.Del(ctx, s.cache.CartKey(uid)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "invalidating cart cache failed")
	}
}
