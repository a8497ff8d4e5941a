package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/infrastructure"
)

// CatalogClient читает публичный API catalog-service
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProduct - GET /products/:id. Неопубликованный товар каталог отдаёт как 404.
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*entity.CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// 400 - невалидный ObjectID, для заявки это тот же "товара нет"
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, infrastructure.ErrCatalogProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var product entity.CatalogProduct
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &product, nil
}

var _ infrastructure.CatalogServiceClient = (*CatalogClient)(nil)
