package shopify

import (
	"context"
	"fmt"

	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
)

const customerUpdateMutation = `
mutation customerUpdate($input: CustomerInput!) {
  customerUpdate(input: $input) {
    customer { id }
    userErrors { field message }
  }
}`

const metafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields { id }
    userErrors { field message }
  }
}`

// CustomerUpdateParams carries the profile fields pushed back to Shopify
// when a user completes registration.
type CustomerUpdateParams struct {
	CustomerID int64
	FirstName  string
	LastName   string
	Phone      string
}

// MetafieldInput sets a single customer metafield.
type MetafieldInput struct {
	Namespace string
	Key       string
	Type      string
	Value     string
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type customerUpdateData struct {
	CustomerUpdate struct {
		Customer *struct {
			ID string `json:"id"`
		} `json:"customer"`
		UserErrors []userError `json:"userErrors"`
	} `json:"customerUpdate"`
}

type metafieldsSetData struct {
	MetafieldsSet struct {
		Metafields []struct {
			ID string `json:"id"`
		} `json:"metafields"`
		UserErrors []userError `json:"userErrors"`
	} `json:"metafieldsSet"`
}

// CustomerGID converts a numeric Shopify customer ID into its GraphQL global ID.
func CustomerGID(customerID int64) string {
	return fmt.Sprintf("gid://shopify/Customer/%d", customerID)
}

// UpdateCustomer pushes name and phone fields onto the Shopify customer record.
func (c *Client) UpdateCustomer(ctx context.Context, params CustomerUpdateParams) error {
	input := map[string]any{
		"id": CustomerGID(params.CustomerID),
	}
	if params.FirstName != "" {
		input["firstName"] = params.FirstName
	}
	if params.LastName != "" {
		input["lastName"] = params.LastName
	}
	if params.Phone != "" {
		input["phone"] = params.Phone
	}

	var data customerUpdateData
	if err := c.Do(ctx, "customer_update", customerUpdateMutation, map[string]any{"input": input}, &data); err != nil {
		return err
	}
	if errs := data.CustomerUpdate.UserErrors; len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify customer update: %s", errs[0].Message))
	}
	if data.CustomerUpdate.Customer == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shopify customer update returned no customer")
	}
	return nil
}

// SetCustomerMetafields writes metafields against the Shopify customer record.
func (c *Client) SetCustomerMetafields(ctx context.Context, customerID int64, fields []MetafieldInput) error {
	if len(fields) == 0 {
		return nil
	}

	ownerID := CustomerGID(customerID)
	metafields := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		metafields = append(metafields, map[string]any{
			"ownerId":   ownerID,
			"namespace": f.Namespace,
			"key":       f.Key,
			"type":      f.Type,
			"value":     f.Value,
		})
	}

	var data metafieldsSetData
	if err := c.Do(ctx, "metafields_set", metafieldsSetMutation, map[string]any{"metafields": metafields}, &data); err != nil {
		return err
	}
	if errs := data.MetafieldsSet.UserErrors; len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify metafields set: %s", errs[0].Message))
	}
	return nil
}
