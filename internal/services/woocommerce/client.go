package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"woosync/internal/logger"
	"woosync/internal/models"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	timeout        time.Duration
	logger         *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport client. The client is shared by all
// concurrent calls and must not be mutated afterwards.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. It applies to a copy of the transport
// client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient builds a client for the REST API rooted at baseURL
// (e.g. https://shop.example.com/wp-json/wc/v3).
func NewClient(baseURL, consumerKey, consumerSecret string, logger *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

type ListOptions struct {
	Page    int
	PerPage int
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

type SystemStatusTool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Success     *bool  `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
}

// FindBySKU returns the first product whose sku matches, or nil when the
// store has none. Only one result is requested.
func (c *Client) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	q := url.Values{}
	q.Set("sku", sku)
	q.Set("per_page", "1")

	var products []models.Product
	if _, err := c.do(ctx, http.MethodGet, "/products", q, nil, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// FindCategoryBySlug returns the product category with slug, or nil when the
// store has none.
func (c *Client) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("per_page", "1")

	var categories []models.Category
	if _, err := c.do(ctx, http.MethodGet, "/products/categories", q, nil, &categories); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

// GetProduct fetches a single product by ID
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if _, err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (*ProductPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(opts.PerPage))
	q.Set("page", strconv.Itoa(opts.Page))

	var products []models.Product
	header, err := c.do(ctx, http.MethodGet, "/products", q, nil, &products)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		Total:      headerInt(header, "X-WP-Total"),
		TotalPages: headerInt(header, "X-WP-TotalPages"),
	}, nil
}

func (c *Client) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	var created models.Product
	if _, err := c.do(ctx, http.MethodPost, "/products", nil, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, product *models.Product) (*models.Product, error) {
	var updated models.Product
	if _, err := c.do(ctx, http.MethodPut, productPath(id), nil, product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a product. Without force WooCommerce moves it to the trash.
func (c *Client) DeleteProduct(ctx context.Context, id int64, force bool) (*models.Product, error) {
	q := url.Values{}
	q.Set("force", strconv.FormatBool(force))

	var deleted models.Product
	if _, err := c.do(ctx, http.MethodDelete, productPath(id), q, nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// SystemStatus returns the raw system status report. It is used as a
// connectivity and credentials check.
func (c *Client) SystemStatus(ctx context.Context) (map[string]json.RawMessage, error) {
	var status map[string]json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/system_status", nil, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) SystemStatusTools(ctx context.Context) ([]SystemStatusTool, error) {
	var tools []SystemStatusTool
	if _, err := c.do(ctx, http.MethodGet, "/system_status/tools", nil, nil, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.logger.Debugw("woocommerce request", "method", method, "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("woocommerce request failed", "method", method, "path", path, "error", err)
		return nil, &RemoteStoreError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorw("woocommerce response unreadable", "method", method, "path", path, "status", resp.StatusCode, "error", err)
		return nil, &RemoteStoreError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debugw("woocommerce response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rse := newStatusError(method, path, resp.StatusCode, respBody)
		c.logger.Errorw("woocommerce error response",
			"method", method,
			"path", path,
			"status", rse.StatusCode,
			"code", rse.Code,
			"message", rse.Message,
		)
		return nil, rse
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, &RemoteStoreError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Message:    "failed to decode response",
				Err:        err,
			}
		}
	}

	return resp.Header, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func headerInt(h http.Header, key string) int {
	n, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return 0
	}
	return n
}
