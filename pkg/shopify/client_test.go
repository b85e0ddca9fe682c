package shopify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kippu-app/kippu-backend/pkg/config"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), config.ShopifyConfig{
		ShopDomain:    "kippu-store.myshopify.com",
		AccessToken:   "shpat_test",
		WebhookSecret: "whsec_test",
		APIVersion:    "2024-10",
		Timeout:       5 * time.Second,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.endpoint = serverURL
	return c
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()
	base := config.ShopifyConfig{
		ShopDomain:    "kippu-store.myshopify.com",
		AccessToken:   "shpat_test",
		WebhookSecret: "whsec_test",
	}

	if _, err := NewClient(ctx, base, nil); err == nil {
		t.Fatal("expected logger error")
	}

	missingDomain := base
	missingDomain.ShopDomain = " "
	if _, err := NewClient(ctx, missingDomain, testLogger()); err == nil {
		t.Fatal("expected shop domain error")
	}

	missingToken := base
	missingToken.AccessToken = ""
	if _, err := NewClient(ctx, missingToken, testLogger()); err == nil {
		t.Fatal("expected access token error")
	}

	missingSecret := base
	missingSecret.WebhookSecret = ""
	if _, err := NewClient(ctx, missingSecret, testLogger()); err == nil {
		t.Fatal("expected webhook secret error")
	}
}

func TestDoDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(accessTokenHeader); got != "shpat_test" {
			t.Errorf("missing access token header, got %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"data":{"shop":{"name":"kippu"}}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	var out struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := c.Do(context.Background(), "shop_query", `query { shop { name } }`, nil, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Shop.Name != "kippu" {
		t.Fatalf("unexpected shop name %q", out.Shop.Name)
	}
}

func TestDoSurfacesGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	err := c.Do(context.Background(), "shop_query", `query { shop { name } }`, nil, nil)
	if err == nil {
		t.Fatal("expected graphql error")
	}
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDoSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.Do(context.Background(), "shop_query", `query { shop { name } }`, nil, nil); err == nil {
		t.Fatal("expected status error")
	}
}

func TestUpdateCustomerUserErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"customerUpdate":{"customer":null,"userErrors":[{"field":["phone"],"message":"Phone is invalid"}]}}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	err := c.UpdateCustomer(context.Background(), CustomerUpdateParams{CustomerID: 42, Phone: "bad"})
	if err == nil {
		t.Fatal("expected user error")
	}
}

func TestSetCustomerMetafields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Metafields []map[string]any `json:"metafields"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Variables.Metafields) != 1 {
			t.Errorf("expected 1 metafield, got %d", len(req.Variables.Metafields))
		}
		_, _ = w.Write([]byte(`{"data":{"metafieldsSet":{"metafields":[{"id":"gid://shopify/Metafield/1"}],"userErrors":[]}}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	err := c.SetCustomerMetafields(context.Background(), 42, []MetafieldInput{
		{Namespace: "kippu", Key: "registered", Type: "boolean", Value: "true"},
	})
	if err != nil {
		t.Fatalf("SetCustomerMetafields: %v", err)
	}
}

func TestCustomerGID(t *testing.T) {
	if got := CustomerGID(7713); got != "gid://shopify/Customer/7713" {
		t.Fatalf("unexpected gid %q", got)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":123}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, secret, valid) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifyWebhookSignature(payload, secret, "tampered") {
		t.Fatal("tampered signature verified")
	}
	if VerifyWebhookSignature(payload, "", valid) {
		t.Fatal("empty secret verified")
	}
	if VerifyWebhookSignature(payload, secret, "") {
		t.Fatal("empty header verified")
	}
	if VerifyWebhookSignature([]byte(`{"id": 123}`), secret, valid) {
		t.Fatal("modified payload bytes verified")
	}
}
