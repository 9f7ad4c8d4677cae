package httpx

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/database"
	"golang.org/x/crypto/bcrypt"
)

// RefreshTTL is how long a refresh token stays usable.
const RefreshTTL = 8760 * time.Hour

var errCannotRefresh = errors.New("could not refresh")

type credentialsVerifier struct {
	db *sql.DB
}

func CredentialsVerifier(db *sql.DB) oauth.CredentialsVerifier {
	return &credentialsVerifier{db}
}

// NewBearerServer issues and refreshes the tokens checked by middlewares.Admin.
func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	user, err := database.GetUserByName(r.Context(), cs.db, username)
	if err != nil {
		return err
	}

	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return database.StoreToken(context.Background(), cs.db, credential, tokenID, refreshTokenID, time.Now().Add(RefreshTTL))
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	expiration, err := database.ConsumeToken(context.Background(), cs.db, credential, tokenID, refreshTokenID)
	if err != nil {
		return errCannotRefresh
	}

	if expiration.Before(time.Now()) {
		return errCannotRefresh
	}
	return nil
}

// AddClaims grants the admin role to staff users; claims["user"] carries the user id.
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	user, err := database.GetUserByName(r.Context(), cs.db, credential)
	if err != nil {
		return nil, err
	}

	claims := map[string]string{"user": strconv.FormatInt(user.ID, 10)}
	if user.IsAdmin {
		claims["roles"] = "admin"
	}
	return claims, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
