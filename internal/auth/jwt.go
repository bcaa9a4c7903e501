package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the session token lifetime.
const TokenTTL = time.Hour

// ErrTokenExpired distinguishes an expired session from an otherwise invalid
// token so the API can tell the client to re-authenticate.
var ErrTokenExpired = errors.New("token expired")

var jwtSecret string

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

// SetSecretForTest overrides the signing secret in tests.
func SetSecretForTest(secret string) {
	jwtSecret = secret
}

// SessionClaims is the identity embedded in every session token.
type SessionClaims struct {
	UID   string
	Uname string
	Role  string
}

func GenerateJWT(uid, uname, role string) (string, error) {
	claims := jwt.MapClaims{
		"uid":   uid,
		"uname": uname,
		"role":  role,
		"exp":   time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyJWT parses and validates a session token, returning its claims.
func VerifyJWT(tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SessionClaims{}, fmt.Errorf("invalid token")
	}

	uid, _ := claims["uid"].(string)
	uname, _ := claims["uname"].(string)
	role, _ := claims["role"].(string)

	if uid == "" || uname == "" {
		return SessionClaims{}, fmt.Errorf("invalid token claims")
	}

	return SessionClaims{UID: uid, Uname: uname, Role: role}, nil
}
