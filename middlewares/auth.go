package middlewares

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// Claims is our custom JWT payload (subject=userID).
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

// SetJWTSecret installs the signing key read from configuration.
func SetJWTSecret(secret string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = []byte(secret)
}

func loadJWTSecret() ([]byte, error) {
	secretMu.RLock()
	sec := jwtSecret
	secretMu.RUnlock()
	if len(sec) > 0 {
		return sec, nil
	}
	// Fall back to the environment when nothing was configured explicitly.
	env := os.Getenv("JWT_SECRET_KEY")
	if strings.TrimSpace(env) == "" {
		return nil, errors.New("JWT secret not configured (set JWT_SECRET_KEY)")
	}
	SetJWTSecret(env)
	return []byte(env), nil
}

// IsAuthenticatedHeader validates a Bearer token, enforces HS256, and populates c.Locals("userID").
func IsAuthenticatedHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret, err := loadJWTSecret()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "server auth not configured",
			})
		}

		h := c.Get(authHeader)
		if h == "" || !strings.HasPrefix(strings.ToLower(h), strings.ToLower(bearerPrefix)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "missing/invalid Authorization header"})
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid bearer token"})
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		var claims Claims
		token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid or expired token"})
		}
		if strings.TrimSpace(claims.Subject) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "token missing subject"})
		}

		c.Locals("userID", claims.Subject)
		c.Locals("userEmail", claims.Email)
		return c.Next()
	}
}

// GenerateJWT signs a new HS256 token for the given user, expiring in 24h.
func GenerateJWT(userID, email string) (string, error) {
	secret, err := loadJWTSecret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
