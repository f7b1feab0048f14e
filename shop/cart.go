package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CartItem is one line of a user's cart.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartAdd puts one unit of a product into the signed-in user's cart.
func (c *Client) CartAdd(ctx context.Context, token, productID string) error {
	_, err := c.sendRequest(ctx, http.MethodPost, "/cart/items", token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	return err
}

// CartRemove removes a product from the cart.
func (c *Client) CartRemove(ctx context.Context, token, productID string) error {
	_, err := c.sendRequest(ctx, http.MethodDelete, "/cart/items/"+productID, token, nil)
	return err
}

// Cart returns the current cart contents.
func (c *Client) Cart(ctx context.Context, token string) ([]CartItem, error) {
	body, err := c.sendRequest(ctx, http.MethodGet, "/cart", token, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []CartItem `json:"items"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return response.Items, nil
}
