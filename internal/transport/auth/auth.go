package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the token claims issued by the identity provider. Subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 bearer tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses token and returns the identity it carries.
func (v *Verifier) Verify(token string) (identity.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return identity.Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return identity.Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return identity.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// Issue signs a token for id. The identity provider normally issues tokens; this serves
// development tokens and tests.
func (v *Verifier) Issue(id identity.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Middleware puts the caller identity into the request context. Requests without a token
// pass through anonymously; requests with a bad token are rejected. Browsers cannot set
// headers on websocket upgrades, so the token may also come in the access_token query
// parameter.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			token = r.URL.Query().Get("access_token")
		}
		if token == "" {
			next.ServeHTTP(w, r)

			return
		}

		id, err := v.Verify(token)
		if err != nil {
			response.JSON(w, http.StatusUnauthorized, response.ErrorBody{Error: ErrInvalidToken.Error()})

			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
	})
}

// BearerToken extracts the token of an Authorization header value.
func BearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}
