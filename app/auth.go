package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ------------------- Admin Auth -------------------

const adminTokenTTL = 12 * time.Hour

func checkAdminCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
	return userOK && passOK
}

func requireAPIAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := getBearerUsername(r); ok {
		return true
	}
	respondError(w, http.StatusUnauthorized, "Unauthorized")
	return false
}

func getBearerUsername(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return verifyJWT(strings.TrimSpace(parts[1]))
}

func signJWT(unsigned string) string {
	mac := hmac.New(sha256.New, admin.JWTSecret)
	_, _ = mac.Write([]byte(unsigned))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func issueJWT(username string, ttl time.Duration) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, errors.New("missing username")
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	exp := time.Now().Add(ttl).Unix()
	payloadBytes, err := json.Marshal(map[string]interface{}{
		"sub": username,
		"exp": exp,
	})
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "marshal jwt payload")
	}
	payload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	unsigned := header + "." + payload
	token := unsigned + "." + signJWT(unsigned)
	return token, time.Unix(exp, 0), nil
}

// verifyJWT accepts only unexpired tokens signed for the configured admin.
func verifyJWT(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	expected := signJWT(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return "", false
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", false
	}

	var payload struct {
		Sub string `json:"sub"`
		Exp int64  `json:"exp"`
	}
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return "", false
	}
	if payload.Sub == "" || payload.Sub != admin.Username {
		return "", false
	}
	if time.Now().Unix() > payload.Exp {
		return "", false
	}
	return payload.Sub, true
}
