package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// unsignedToken builds a structurally valid JWT with an empty signature.
// PeekClaims never verifies, so this is enough.
func unsignedToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	enc := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}

	header := map[string]any{"alg": "none", "typ": "JWT"}
	return enc(header) + "." + enc(claims) + "."
}

func TestPeekClaims(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := unsignedToken(t, map[string]any{
		"sub":      "u-42",
		"email":    "driver@example.com",
		"userType": "DRIVER",
		"exp":      exp.Unix(),
	})

	claims, err := PeekClaims(token)
	if err != nil {
		t.Fatalf("PeekClaims() error: %v", err)
	}
	if claims.Subject != "u-42" {
		t.Errorf("Subject = %q, want u-42", claims.Subject)
	}
	if claims.Email != "driver@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.UserType != UserTypeDriver {
		t.Errorf("UserType = %q, want DRIVER", claims.UserType)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestPeekClaims_Malformed(t *testing.T) {
	if _, err := PeekClaims("not-a-jwt"); err == nil {
		t.Error("PeekClaims() on garbage should error")
	}
}

func TestPeekClaims_MissingClaims(t *testing.T) {
	claims, err := PeekClaims(unsignedToken(t, map[string]any{"sub": "u-1"}))
	if err != nil {
		t.Fatalf("PeekClaims() error: %v", err)
	}
	if !claims.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", claims.ExpiresAt)
	}
	if claims.Email != "" || claims.UserType != "" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
