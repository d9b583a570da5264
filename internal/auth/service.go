package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/farhanmaulana/cetakin-backend/pkg/auth"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/docstore"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"github.com/farhanmaulana/cetakin-backend/pkg/metrics"
	redisclient "github.com/farhanmaulana/cetakin-backend/pkg/redis"
)

// linkStore is the slice of the redis client used for one-time link tokens.
type linkStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	GetDel(ctx context.Context, key string) (string, error)
	MagicLinkKey(tokenHash string) string
}

// userStore is the slice of the document store used for accounts.
type userStore interface {
	Create(ctx context.Context, path string, doc any) error
	Set(ctx context.Context, path string, doc any) error
	Get(ctx context.Context, path string, dest any) error
	FindOneByField(ctx context.Context, field string, value any, dest any) error
}

// sessionStarter is the session surface the sign-in flow needs.
type sessionStarter interface {
	Start(ctx context.Context, accessID, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

// SignIn is the result of a verified sign-in link.
type SignIn struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Service implements passwordless sign-in with emailed one-time links.
type Service interface {
	RequestLink(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*SignIn, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	links    linkStore
	users    userStore
	sessions sessionStarter
	mailer   Mailer
	jwtCfg   config.JWTConfig
	linkBase string
	linkTTL  time.Duration
	metrics  *metrics.StorefrontMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the sign-in flow.
func NewService(
	links linkStore,
	users userStore,
	sessions sessionStarter,
	mailer Mailer,
	jwtCfg config.JWTConfig,
	mailCfg config.MailerConfig,
	m *metrics.StorefrontMetrics,
	logg *logger.Logger,
) (Service, error) {
	if links == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: link store is required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: user store is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: session manager is required")
	}
	if mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: mailer is required")
	}
	if strings.TrimSpace(mailCfg.LinkBaseURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: link base url is required")
	}
	ttl := mailCfg.LinkTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &service{
		links:    links,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		jwtCfg:   jwtCfg,
		linkBase: mailCfg.LinkBaseURL,
		linkTTL:  ttl,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// RequestLink issues a one-time sign-in link for the email address. The
// raw token only ever leaves the process inside the mail; redis holds a
// hash of it.
func (s *service) RequestLink(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	token, hash, err := newLinkToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating sign-in token")
	}
	stored, err := s.links.SetNX(ctx, s.links.MagicLinkKey(hash), email, s.linkTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing sign-in token")
	}
	if !stored {
		return pkgerrors.New(pkgerrors.CodeInternal, "sign-in token already issued")
	}

	link := s.linkBase + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendSignInLink(ctx, email, link); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending sign-in link")
	}

	s.metrics.IncLinkRequest()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "email", email), "sign-in link requested")
	}
	return nil
}

// Verify consumes a link token, creating the account on first sign-in, and
// returns a minted access token with a live session behind it.
func (s *service) Verify(ctx context.Context, token string) (*SignIn, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sign-in token is required")
	}

	email, err := s.links.GetDel(ctx, s.links.MagicLinkKey(hashToken(token)))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in link is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking sign-in token")
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	jti := uuid.NewString()
	signed, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	if err := s.sessions.Start(ctx, jti, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "starting session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "sign-in verified")
	}
	return &SignIn{
		Token:     signed,
		ExpiresAt: now.Add(s.jwtCfg.AccessTokenTTL()),
		User:      user,
	}, nil
}

// Logout revokes the live session behind the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) findOrCreateUser(ctx context.Context, email string) (User, error) {
	var doc userDoc
	err := s.users.FindOneByField(ctx, "email", email, &doc)
	if err == nil {
		return decodeUserOrInternal(doc)
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading account")
	}

	user := User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	// Profile documents are keyed by uid, so the email claim is the only
	// write that can collide. Claiming first makes the first sign-in win.
	err = s.users.Create(ctx, docstore.UserEmailPath(email), encodeUser(user))
	if errors.Is(err, docstore.ErrDuplicate) {
		// Lost a race with a concurrent first sign-in; the claimed
		// account is the real one.
		if getErr := s.users.Get(ctx, docstore.UserEmailPath(email), &doc); getErr != nil {
			return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "loading account")
		}
		return decodeUserOrInternal(doc)
	}
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating account")
	}
	if err := s.users.Set(ctx, docstore.UserPath(user.ID.String()), encodeUser(user)); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating account")
	}
	return user, nil
}

func decodeUserOrInternal(doc userDoc) (User, error) {
	user, err := decodeUser(doc)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding account")
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email address is not valid")
	}
	return email, nil
}

func newLinkToken() (token, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

