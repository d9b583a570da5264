package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/farhanmaulana/cetakin-backend/pkg/auth"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/docstore"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	redisclient "github.com/farhanmaulana/cetakin-backend/pkg/redis"
)

type fakeLinks struct {
	values map[string]string
}

func (f *fakeLinks) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLinks) GetDel(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redisclient.Nil
	}
	delete(f.values, key)
	return v, nil
}

func (f *fakeLinks) MagicLinkKey(tokenHash string) string {
	return "ctk:magic_link:" + tokenHash
}

type fakeUsers struct {
	docs map[string]userDoc
	// findMisses forces the next N lookups by email to report no match,
	// mimicking reads that happened before a concurrent writer committed.
	findMisses int
}

func (f *fakeUsers) Create(ctx context.Context, path string, doc any) error {
	if _, exists := f.docs[path]; exists {
		return docstore.ErrDuplicate
	}
	f.docs[path] = doc.(userDoc)
	return nil
}

func (f *fakeUsers) Set(ctx context.Context, path string, doc any) error {
	f.docs[path] = doc.(userDoc)
	return nil
}

func (f *fakeUsers) Get(ctx context.Context, path string, dest any) error {
	doc, ok := f.docs[path]
	if !ok {
		return docstore.ErrNotFound
	}
	*dest.(*userDoc) = doc
	return nil
}

func (f *fakeUsers) FindOneByField(ctx context.Context, field string, value any, dest any) error {
	if f.findMisses > 0 {
		f.findMisses--
		return docstore.ErrNotFound
	}
	if field != "email" {
		return docstore.ErrNotFound
	}
	for _, doc := range f.docs {
		if doc.Email == value.(string) {
			*dest.(*userDoc) = doc
			return nil
		}
	}
	return docstore.ErrNotFound
}

type fakeSessions struct {
	started map[string]string
	revoked []string
}

func (f *fakeSessions) Start(ctx context.Context, accessID, userID string) error {
	f.started[accessID] = userID
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type fakeMailer struct {
	to   string
	link string
}

func (f *fakeMailer) SendSignInLink(ctx context.Context, to, link string) error {
	f.to = to
	f.link = link
	return nil
}

type authFixture struct {
	svc      Service
	links    *fakeLinks
	users    *fakeUsers
	sessions *fakeSessions
	mailer   *fakeMailer
	jwtCfg   config.JWTConfig
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	links := &fakeLinks{values: map[string]string{}}
	users := &fakeUsers{docs: map[string]userDoc{}}
	sessions := &fakeSessions{started: map[string]string{}}
	mailer := &fakeMailer{}
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cetakin",
		ExpirationMinutes: 60,
	}
	mailCfg := config.MailerConfig{
		LinkBaseURL: "https://cetakin.id/auth/verify",
		LinkTTL:     15 * time.Minute,
	}
	svc, err := NewService(links, users, sessions, mailer, jwtCfg, mailCfg, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &authFixture{
		svc:      svc,
		links:    links,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		jwtCfg:   jwtCfg,
	}
}

func (f *authFixture) issuedToken(t *testing.T) string {
	t.Helper()
	parsed, err := url.Parse(f.mailer.link)
	if err != nil {
		t.Fatalf("parsing mailed link %q: %v", f.mailer.link, err)
	}
	token := parsed.Query().Get("token")
	if token == "" {
		t.Fatalf("mailed link %q has no token", f.mailer.link)
	}
	return token
}

func TestRequestLinkStoresHashNotToken(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)

	if err := fx.svc.RequestLink(context.Background(), " Buyer@Example.COM "); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	if fx.mailer.to != "buyer@example.com" {
		t.Fatalf("mail sent to %q", fx.mailer.to)
	}

	token := fx.issuedToken(t)
	if len(fx.links.values) != 1 {
		t.Fatalf("link store has %d entries", len(fx.links.values))
	}
	for key, email := range fx.links.values {
		if strings.Contains(key, token) {
			t.Fatal("raw token leaked into the link store key")
		}
		if email != "buyer@example.com" {
			t.Fatalf("stored email = %q", email)
		}
	}
}

func TestRequestLinkRejectsBadEmail(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)

	for _, email := range []string{"", "   ", "not-an-email", "a@"} {
		if err := fx.svc.RequestLink(context.Background(), email); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("email %q: err = %v, want validation", email, err)
		}
	}
}

func TestVerifyCreatesAccountAndSession(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	if err := fx.svc.RequestLink(context.Background(), "buyer@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}

	signIn, err := fx.svc.Verify(context.Background(), fx.issuedToken(t))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if signIn.User.Email != "buyer@example.com" || signIn.User.ID == uuid.Nil {
		t.Fatalf("user = %+v", signIn.User)
	}
	if _, ok := fx.users.docs[docstore.UserEmailPath("buyer@example.com")]; !ok {
		t.Fatal("email claim document missing")
	}
	if _, ok := fx.users.docs[docstore.UserPath(signIn.User.ID.String())]; !ok {
		t.Fatal("profile document missing")
	}

	claims, err := pkgauth.ParseAccessToken(fx.jwtCfg, signIn.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != signIn.User.ID || claims.Email != "buyer@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if got := fx.sessions.started[claims.ID]; got != signIn.User.ID.String() {
		t.Fatalf("session for jti %q = %q", claims.ID, got)
	}
}

func TestVerifyTokenIsSingleUse(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	if err := fx.svc.RequestLink(context.Background(), "buyer@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	token := fx.issuedToken(t)

	if _, err := fx.svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	_, err := fx.svc.Verify(context.Background(), token)
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("second Verify err = %v, want unauthorized", err)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	_, err := fx.svc.Verify(context.Background(), "never-issued")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestVerifyReusesExistingAccount(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	existing := User{ID: uuid.New(), Email: "buyer@example.com", CreatedAt: time.Now().UTC()}
	fx.users.docs[docstore.UserPath(existing.ID.String())] = encodeUser(existing)

	if err := fx.svc.RequestLink(context.Background(), "buyer@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	signIn, err := fx.svc.Verify(context.Background(), fx.issuedToken(t))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if signIn.User.ID != existing.ID {
		t.Fatalf("user id = %s, want %s", signIn.User.ID, existing.ID)
	}
	if len(fx.users.docs) != 1 {
		t.Fatalf("user docs = %d, want 1", len(fx.users.docs))
	}
}

func TestVerifyRacingFirstSignInsShareOneAccount(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	// Both verifications look up the email before either account write
	// lands, the ordering two concurrent first sign-ins would see.
	fx.users.findMisses = 2

	if err := fx.svc.RequestLink(context.Background(), "buyer@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	firstToken := fx.issuedToken(t)
	if err := fx.svc.RequestLink(context.Background(), "buyer@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	secondToken := fx.issuedToken(t)

	first, err := fx.svc.Verify(context.Background(), firstToken)
	if err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	second, err := fx.svc.Verify(context.Background(), secondToken)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Fatalf("accounts diverged: %s vs %s", first.User.ID, second.User.ID)
	}

	profiles := 0
	for path := range fx.users.docs {
		if strings.HasPrefix(path, "users/") {
			profiles++
		}
	}
	if profiles != 1 {
		t.Fatalf("profile docs = %d, want 1", profiles)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	if err := fx.svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(fx.sessions.revoked) != 1 || fx.sessions.revoked[0] != "jti-123" {
		t.Fatalf("revoked = %v", fx.sessions.revoked)
	}
}
