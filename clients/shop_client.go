package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"storefront/models"
)

// APIError is a structured error body from the shop API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shop api error: status=%d message=%s", e.Status, e.Message)
}

// ShopClient talks to the remote catalog/order/session service. The
// session cookie set by sign-in lives in the client's jar, so every
// subsequent call carries it.
type ShopClient struct {
	baseURL string
	client  *http.Client
}

func NewShopClient(baseURL string, timeout time.Duration) (*ShopClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &ShopClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

func (s *ShopClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.client.Do(req)
}

// decodeJSON closes the body and decodes into out, turning non-2xx
// responses into *APIError.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CurrentMember probes the session. An authentication failure comes
// back as *APIError with a 401 status.
func (s *ShopClient) CurrentMember(ctx context.Context) (*models.Member, error) {
	resp, err := s.do(ctx, http.MethodGet, "/api/members/me", nil)
	if err != nil {
		return nil, err
	}

	var member models.Member
	if err := decodeJSON(resp, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// SignInRequest carries the shopper's credentials to the shop API.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates against the shop API. Success is opaque: the
// session cookie lands in the jar and the caller re-probes for the
// member record.
func (s *ShopClient) SignIn(ctx context.Context, req SignInRequest) error {
	resp, err := s.do(ctx, http.MethodPost, "/api/signin", req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// SignOut invalidates the remote session.
func (s *ShopClient) SignOut(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodPost, "/api/signout", nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// SessionToken returns the raw access-token cookie the shop API set
// for its base URL, or "" when none is present.
func (s *ShopClient) SessionToken() string {
	req, err := http.NewRequest(http.MethodGet, s.baseURL, nil)
	if err != nil {
		return ""
	}
	for _, c := range s.client.Jar.Cookies(req.URL) {
		if c.Name == "access_token" {
			return c.Value
		}
	}
	return ""
}

// OrderDetailRequest is one line of an order submission.
type OrderDetailRequest struct {
	ProductID    int64 `json:"product_id"`
	ProductCount int64 `json:"product_count"`
}

// CreateOrderRequest is the order-creation payload the shop API expects.
type CreateOrderRequest struct {
	MemberID       int64                `json:"member_id"`
	PaymentMethod  string               `json:"payment_method"`
	PaymentAmount  int64                `json:"payment_amount"`
	DeliveryCost   int64                `json:"delivery_cost"`
	OrderDetails   []OrderDetailRequest `json:"order_details"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

// CreateOrder submits the order and returns the created record with
// its server-assigned id and timestamp.
func (s *ShopClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	resp, err := s.do(ctx, http.MethodPost, "/api/orders", req)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := decodeJSON(resp, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetProduct fetches catalog data for display enrichment.
func (s *ShopClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := decodeJSON(resp, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts fetches a catalog page, passed through as-is.
func (s *ShopClient) ListProducts(ctx context.Context, query string) (json.RawMessage, error) {
	path := "/api/products"
	if query != "" {
		path += "?" + query
	}
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decodeJSON(resp, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetOrder fetches a created order for display.
func (s *ShopClient) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	resp, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := decodeJSON(resp, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
