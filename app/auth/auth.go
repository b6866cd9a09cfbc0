// Package auth derives the acting user from a bearer token and checks it against resource owners.
// Tokens are stateless base64-encoded JSON objects like {"id": "4"}, no session or expiry.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/umputun/social-feed/app/models"
)

// InvalidID is returned for missing or malformed tokens. It never matches any owner.
const InvalidID models.ID = ""

const bearerPrefix = "Bearer "

type tokenClaims struct {
	ID *models.ID `json:"id"`
}

// UserFromHeader decodes Authorization header value into the claimed user id.
// Fails closed, any problem results in InvalidID.
func UserFromHeader(header string) models.ID {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return InvalidID
	}
	data, ok := decodeBase64(strings.TrimSpace(header[len(bearerPrefix):]))
	if !ok {
		return InvalidID
	}

	// id can be either a string or a number
	claims := tokenClaims{}
	if err := json.Unmarshal(data, &claims); err != nil || claims.ID == nil {
		return InvalidID
	}
	return *claims.ID
}

// Authorize checks if the header's user is the required one
func Authorize(header string, required models.ID) bool {
	claimed := UserFromHeader(header)
	return claimed != InvalidID && claimed == required
}

// Token makes bearer token for the user id, without the "Bearer " prefix
func Token(id models.ID) string {
	data, _ := json.Marshal(map[string]string{"id": string(id)}) // can't fail for map of strings
	return base64.StdEncoding.EncodeToString(data)
}

func decodeBase64(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, true
		}
	}
	return nil, false
}
