package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-jwt-signing-32b")

func TestGenerateAndParseAccessToken(t *testing.T) {
	user := &User{ID: "usr-001", Username: "alice", Role: RoleOperator}

	token, expires, err := GenerateAccessToken(user, testSecret, 10*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}
	if d := time.Until(expires); d < 9*time.Minute || d > 10*time.Minute {
		t.Errorf("expiry in %v, want ~10m", d)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "usr-001" || claims.Username != "alice" || claims.Role != RoleOperator {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	_, expires, err := GenerateAccessToken(&User{ID: "u", Role: RoleViewer}, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if d := time.Until(expires); d < 14*time.Minute || d > defaultAccessTTL {
		t.Errorf("expiry in %v, want ~15m", d)
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims CustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	valid := func() CustomClaims {
		return CustomClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   "usr-001",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
			Role: RoleAdmin,
		}
	}

	tests := []struct {
		name  string
		token func() string
	}{
		{"wrong secret", func() string {
			return signClaims(t, jwt.SigningMethodHS256, []byte("another-secret"), valid())
		}},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			return signClaims(t, jwt.SigningMethodHS256, testSecret, c)
		}},
		{"no expiry", func() string {
			c := valid()
			c.ExpiresAt = nil
			return signClaims(t, jwt.SigningMethodHS256, testSecret, c)
		}},
		{"wrong issuer", func() string {
			c := valid()
			c.Issuer = "someone-else"
			return signClaims(t, jwt.SigningMethodHS256, testSecret, c)
		}},
		{"wrong algorithm", func() string {
			return signClaims(t, jwt.SigningMethodHS512, testSecret, valid())
		}},
		{"none algorithm", func() string {
			return signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())
		}},
		{"missing subject", func() string {
			c := valid()
			c.Subject = ""
			return signClaims(t, jwt.SigningMethodHS256, testSecret, c)
		}},
		{"unknown role", func() string {
			c := valid()
			c.Role = "owner"
			return signClaims(t, jwt.SigningMethodHS256, testSecret, c)
		}},
		{"garbage", func() string { return "not.a.jwt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token(), testSecret)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
