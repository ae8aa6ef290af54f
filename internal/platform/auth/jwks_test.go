package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func rsaPublicKeyToJWK(privateKey *rsa.PrivateKey, kid string) JWKSKey {
	return JWKSKey{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(privateKey.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privateKey.PublicKey.E)).Bytes()),
	}
}

func newJWKSServer(t *testing.T, hits *int32, keys func() []JWKSKey) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(JWKSResponse{Keys: keys()})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return key
}

func TestJWKSCache_Fetch(t *testing.T) {
	privateKey := generateKey(t)
	srv := newJWKSServer(t, nil, func() []JWKSKey {
		return []JWKSKey{rsaPublicKeyToJWK(privateKey, "k1"), {Kty: "EC", Kid: "ec"}}
	})

	cache := NewJWKSCache(srv.URL, 5*time.Minute)
	key, err := cache.GetKey("k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.N.Cmp(privateKey.PublicKey.N) != 0 || key.E != privateKey.PublicKey.E {
		t.Error("fetched key does not match original")
	}
	if _, err := cache.GetKey("ec"); err == nil {
		t.Error("non-RSA keys must be skipped")
	}
}

func TestJWKSCache_UsesCacheWithinTTL(t *testing.T) {
	privateKey := generateKey(t)
	var hits int32
	srv := newJWKSServer(t, &hits, func() []JWKSKey { return []JWKSKey{rsaPublicKeyToJWK(privateKey, "k1")} })

	cache := NewJWKSCache(srv.URL, time.Hour)
	for i := 0; i < 3; i++ {
		if _, err := cache.GetKey("k1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}
}

func TestJWKSCache_KeyRotation(t *testing.T) {
	oldKey, newKey := generateKey(t), generateKey(t)
	var rotated atomic.Bool
	srv := newJWKSServer(t, nil, func() []JWKSKey {
		if rotated.Load() {
			return []JWKSKey{rsaPublicKeyToJWK(newKey, "new")}
		}
		return []JWKSKey{rsaPublicKeyToJWK(oldKey, "old")}
	})

	cache := NewJWKSCache(srv.URL, time.Hour)
	if _, err := cache.GetKey("old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rotated.Store(true)
	key, err := cache.GetKey("new")
	if err != nil {
		t.Fatalf("expected unknown kid to trigger refetch: %v", err)
	}
	if key.N.Cmp(newKey.PublicKey.N) != 0 {
		t.Error("expected rotated key")
	}
}

func TestJWKSCache_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewJWKSCache(srv.URL, time.Minute).GetKey("k1"); err == nil {
		t.Fatal("expected error from failing JWKS endpoint")
	}
}

func TestParseRSAPublicKey_Invalid(t *testing.T) {
	if _, err := parseRSAPublicKey(JWKSKey{Kty: "RSA", N: "!!!", E: "AQAB"}); err == nil {
		t.Error("expected error for invalid modulus")
	}
	if _, err := parseRSAPublicKey(JWKSKey{Kty: "RSA", N: "AQAB", E: "!!!"}); err == nil {
		t.Error("expected error for invalid exponent")
	}
}

func TestDiscoverOIDC(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":   srv.URL,
			"jwks_uri": srv.URL + "/jwks",
		})
	})

	provider, err := DiscoverOIDC(srv.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.JWKSURI != srv.URL+"/jwks" {
		t.Errorf("unexpected jwks_uri %s", provider.JWKSURI)
	}
}

func TestDiscoverOIDC_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	if _, err := DiscoverOIDC(notFound.URL); err == nil {
		t.Error("expected error for 404 discovery document")
	}

	noJWKS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"issuer": "https://idp.example.com"})
	}))
	defer noJWKS.Close()
	if _, err := DiscoverOIDC(noJWKS.URL); err == nil {
		t.Error("expected error for missing jwks_uri")
	}
}

func TestJWTMiddleware_RS256ViaDiscovery(t *testing.T) {
	privateKey := generateKey(t)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"issuer": srv.URL, "jwks_uri": srv.URL + "/jwks"})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JWKSResponse{Keys: []JWKSKey{rsaPublicKeyToJWK(privateKey, "rs-1")}})
	})

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    srv.URL,
			Subject:   "clinician-7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{RoleClinician},
	})
	token.Header["kid"] = "rs-1"
	signed, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	var uid string
	err = JWTMiddleware(JWTConfig{Issuer: srv.URL})(func(c echo.Context) error {
		uid = UserIDFromContext(c.Request().Context())
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "clinician-7" {
		t.Errorf("expected clinician-7, got %q", uid)
	}
}

func TestJwksKeyFunc_NoKidHeader(t *testing.T) {
	kf := jwksKeyFunc(NewJWKSCache("http://127.0.0.1:1", time.Minute))
	if _, err := kf(&jwt.Token{Header: map[string]interface{}{}}); err == nil {
		t.Error("expected error for token without kid")
	}
}
