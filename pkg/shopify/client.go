package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kippu-app/kippu-backend/pkg/config"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

const accessTokenHeader = "X-Shopify-Access-Token"

var (
	errShopDomainRequired    = errors.New("shopify shop domain is required")
	errAccessTokenRequired   = errors.New("shopify access token is required")
	errWebhookSecretRequired = errors.New("shopify webhook secret is required")
	errLoggerRequired        = errors.New("shopify logger is required")
)

// Client wraps the Shopify Admin GraphQL API with centralized auth, logging,
// and error mapping.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	accessToken   string
	webhookSecret string
	logger        *logger.Logger
}

// GraphQLError is a single error entry from a GraphQL response envelope.
type GraphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// NewClient initializes the Shopify wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	domain := strings.TrimSpace(cfg.ShopDomain)
	if domain == "" {
		return nil, errShopDomainRequired
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		endpoint:      fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, cfg.APIVersion),
		accessToken:   accessToken,
		webhookSecret: webhookSecret,
		logger:        logg,
	}

	logg.Info(ctx, "shopify client initialized")
	return c, nil
}

// SigningSecret returns the Shopify webhook secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// Do executes a GraphQL operation against the Admin API and decodes the
// data envelope into out. GraphQL-level errors are surfaced as dependency
// failures.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.accessToken)

	c.log(ctx, "request", operation, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", operation, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("shopify %s", operation))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read shopify response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log(ctx, "error", operation, map[string]any{"status": resp.StatusCode})
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s returned status %d", operation, resp.StatusCode))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shopify response")
	}
	if len(envelope.Errors) > 0 {
		c.log(ctx, "error", operation, map[string]any{"error": envelope.Errors[0].Message})
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s: %s", operation, envelope.Errors[0].Message))
	}

	c.log(ctx, "response", operation, nil)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shopify data")
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shopify %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shopify %s", phase))
	}
}
