package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vecinu/internal/models"
	"vecinu/internal/repository"
	"vecinu/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-at-least-32-chars"

func TestTokens_IssueAndVerify(t *testing.T) {
	t.Parallel()
	tokens := NewTokens(testSecret, "vecinu", "vecinu-web", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "ana@example.com"}

	token, expires, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.NotEmpty(t, claims.RevocationID())
}

func TestTokens_VerifyRejects(t *testing.T) {
	t.Parallel()
	user := &models.User{ID: uuid.New(), Email: "ana@example.com"}

	expired := NewTokens(testSecret, "", "", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(user)
	require.NoError(t, err)

	otherIssuer := NewTokens(testSecret, "someone-else", "", time.Hour)
	wrongIssuerToken, _, err := otherIssuer.Issue(user)
	require.NoError(t, err)

	otherSecret := NewTokens("another-secret-that-is-32-chars-long!!", "vecinu", "", time.Hour)
	wrongSecretToken, _, err := otherSecret.Issue(user)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	verifier := NewTokens(testSecret, "vecinu", "", time.Hour)
	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong issuer", wrongIssuerToken},
		{"wrong secret", wrongSecretToken},
		{"alg none", noneToken},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeAuthentication))
		})
	}
}

func TestLocalProvider_SignUpAndSignIn(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	tokens := NewTokens(testSecret, "", "", time.Hour)
	provider := NewLocalProvider(users, tokens)
	provider.cost = 4
	ctx := context.Background()

	user := &models.User{Email: "maria@example.com", FullName: "Maria Pop"}
	require.NoError(t, provider.SignUp(ctx, user, "Secret123"))
	assert.NotEmpty(t, user.PasswordHash)
	assert.True(t, user.EmailVerified)
	require.NoError(t, users.Create(ctx, user))

	session, err := provider.SignIn(ctx, "MARIA@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", session.Email)

	claims, err := tokens.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)

	_, err = provider.SignIn(ctx, "maria@example.com", "Wrong123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.SignIn(ctx, "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticator_RevokedTokenRejected(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ion")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := NewTokens(testSecret, "", "", time.Hour)
	auth := NewAuthenticator(tokens, repository.NewUserRepository(db), rdb)
	ctx := context.Background()

	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	got, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, auth.Revoke(ctx, token))
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.True(t, mr.Exists(revokedPrefix+claims.RevocationID()))

	_, err = auth.Authenticate(ctx, token)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeAuthentication))
}

func TestAuthenticator_FailsOpenWithoutRedis(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "elena")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := NewTokens(testSecret, "", "", time.Hour)
	auth := NewAuthenticator(tokens, repository.NewUserRepository(db), rdb)
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	mr.Close()
	got, err := auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticator_UnknownUser(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	tokens := NewTokens(testSecret, "", "", time.Hour)
	auth := NewAuthenticator(tokens, repository.NewUserRepository(db), nil)

	token, _, err := tokens.Issue(&models.User{ID: uuid.New(), Email: "ghost@example.com"})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeAuthentication))
}

func newGoTrueServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"msg":"User already registered"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "Secret123" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600,"user":{"email":"Ana@Example.com"}}`))
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoTrueProvider(t *testing.T) {
	t.Parallel()
	srv := newGoTrueServer(t)
	provider := NewGoTrueProvider(srv.URL+"/", "anon-key")
	ctx := context.Background()

	require.NoError(t, provider.SignUp(ctx, &models.User{Email: "ana@example.com", FullName: "Ana"}, "Secret123"))

	err := provider.SignUp(ctx, &models.User{Email: "taken@example.com"}, "Secret123")
	assert.True(t, models.IsCode(err, models.CodeConflict))

	session, err := provider.SignIn(ctx, "ana@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "ana@example.com", session.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	_, err = provider.SignIn(ctx, "ana@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, provider.SignOut(ctx, "tok"))
}
