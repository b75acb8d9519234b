package catalog

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/binhetc/pos-ai/internal/token"
)

const HeaderCorrelationID = "X-Correlation-Id"

// lookupLimit is how many candidates an exact-match lookup requests. The
// backend enforces unique barcodes and SKUs, but some deployments relax
// that; fetching a handful lets the resolver tie-break deterministically
// instead of trusting server-side ordering.
const lookupLimit = 5

// APIError is a non-2xx response from the catalog backend, carrying the
// server-provided message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: %s (http %d)", e.Message, e.StatusCode)
}

// Client issues authenticated requests against the catalog backend.
type Client struct {
	name    string
	baseURL *url.URL
	http    *http.Client
	tokens  token.Source
	log     *zap.Logger
}

func NewClient(name, baseURL string, httpClient *http.Client, tokens token.Source, log *zap.Logger) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{name: name, baseURL: u, http: httpClient, tokens: tokens, log: log}
}

// Do builds and sends one request. A token from the source is attached as a
// bearer header; no token means no header, never a local failure.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader) (*http.Response, error) {
	// Keep any path prefix on the base URL (e.g. a reverse-proxy mount).
	rel := &url.URL{Path: strings.TrimRight(c.baseURL.Path, "/") + path, RawQuery: rawQuery}
	u := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderCorrelationID, uuid.NewString())

	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: token source: %w", c.name, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	return c.http.Do(req)
}

// ListProductsQuery are the filters accepted by GET /products.
type ListProductsQuery struct {
	Page       int
	Size       int
	Search     string
	CategoryID string
	Barcode    string
	SKU        string
}

func (q ListProductsQuery) encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		v.Set("category_id", q.CategoryID)
	}
	if q.Barcode != "" {
		v.Set("barcode", q.Barcode)
	}
	if q.SKU != "" {
		v.Set("sku", q.SKU)
	}
	return v.Encode()
}

func (c *Client) ListProducts(ctx context.Context, q ListProductsQuery) (ProductPage, error) {
	var page ProductPage
	if err := c.getJSON(ctx, "/products", q.encode(), &page); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := c.getJSON(ctx, "/products/"+id, "", &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// LookupByBarcode runs an exact-match barcode query. At most lookupLimit
// candidates come back; an empty slice means no match, not an error.
func (c *Client) LookupByBarcode(ctx context.Context, code string) ([]Product, error) {
	page, err := c.ListProducts(ctx, ListProductsQuery{Barcode: code, Size: lookupLimit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// LookupBySKU runs an exact-match SKU query.
func (c *Client) LookupBySKU(ctx context.Context, code string) ([]Product, error) {
	page, err := c.ListProducts(ctx, ListProductsQuery{SKU: code, Size: lookupLimit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var list CategoryList
	if err := c.getJSON(ctx, "/categories", "", &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var p Product
	if err := c.sendJSON(ctx, http.MethodPost, "/products", in, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	var p Product
	if err := c.sendJSON(ctx, http.MethodPut, "/products/"+id, in, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	resp, err := c.Do(ctx, http.MethodDelete, "/products/"+id, "", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) getJSON(ctx context.Context, path, rawQuery string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, rawQuery, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", c.name, path, err)
	}
	resp, err := c.Do(ctx, method, path, "", bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	// FastAPI-style error bodies carry the message under "detail".
	var body struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
		msg = body.Detail
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
