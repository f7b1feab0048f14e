package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NextShop-AI/assistant-go/model"
)

// WishlistAdd saves a product to the signed-in user's wishlist.
func (c *Client) WishlistAdd(ctx context.Context, token, productID string) error {
	_, err := c.sendRequest(ctx, http.MethodPost, "/wishlist/items", token, map[string]any{
		"productId": productID,
	})
	return err
}

// WishlistRemove removes a product from the wishlist.
func (c *Client) WishlistRemove(ctx context.Context, token, productID string) error {
	_, err := c.sendRequest(ctx, http.MethodDelete, "/wishlist/items/"+productID, token, nil)
	return err
}

// Wishlist returns the current wishlist contents.
func (c *Client) Wishlist(ctx context.Context, token string) ([]model.Product, error) {
	body, err := c.sendRequest(ctx, http.MethodGet, "/wishlist", token, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []model.Product `json:"items"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wishlist: %w", err)
	}
	return response.Items, nil
}
