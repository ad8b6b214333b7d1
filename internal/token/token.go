// Package token issues and verifies the compact bearer tokens used by the
// gateway: a base64 JSON claim set joined to a hex HMAC-SHA256 digest with a
// single dot. Tokens are self-contained; there is no revocation, and
// changing the signing secret invalidates everything outstanding.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidToken is returned for any token that fails verification:
// missing segments, digest mismatch, malformed claims, or elapsed expiry.
var ErrInvalidToken = errors.New("token: invalid")

// Claims is the signed claim set carried by a token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Exp      int64  `json:"exp"` // epoch milliseconds
}

// Codec signs and verifies tokens with a process-wide shared secret.
type Codec struct {
	secret []byte
	nowFn  func() time.Time
}

// NewCodec constructs a Codec. nowFn may be nil for time.Now.
func NewCodec(secret string, nowFn func() time.Time) *Codec {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Codec{secret: []byte(secret), nowFn: nowFn}
}

// Issue produces an opaque token for the given claims.
func (c *Codec) Issue(claims Claims) (string, error) {
	data, errMarshal := json.Marshal(claims)
	if errMarshal != nil {
		return "", errMarshal
	}
	payload := base64.StdEncoding.EncodeToString(data)
	return payload + "." + c.digest(payload), nil
}

// Verify checks the token digest and expiry and returns the decoded claims.
func (c *Codec) Verify(tok string) (Claims, error) {
	payload, digest, ok := strings.Cut(tok, ".")
	if !ok || payload == "" || digest == "" {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(c.digest(payload)), []byte(digest)) {
		return Claims{}, ErrInvalidToken
	}
	data, errDecode := base64.StdEncoding.DecodeString(payload)
	if errDecode != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if errUnmarshal := json.Unmarshal(data, &claims); errUnmarshal != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Exp != 0 && claims.Exp < c.nowFn().UnixMilli() {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) digest(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
