package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"horizonte-forms/internal/validation"
)

const (
	DefaultBaseURL = "https://viacep.com.br/ws/"
	DefaultTimeout = 10 * time.Second
)

var (
	ErrInvalidCEP = errors.New("cep must have 8 digits")
	ErrNotFound   = errors.New("cep not found")
	ErrTimeout    = errors.New("cep lookup timed out")
	ErrStale      = errors.New("cep changed during lookup")
)

type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	IBGE         string `json:"ibge,omitempty"`
	DDD          string `json:"ddd,omitempty"`
}

// Lookuper resolves a normalized 8-digit CEP to an address.
type Lookuper interface {
	Lookup(ctx context.Context, cep string) (Address, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimSpace(baseURL)
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, option := range options {
		option(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c
}

// viaCEPResponse carries "erro": true for unknown codes. Some deployments
// send the flag as the string "true".
type viaCEPResponse struct {
	Address
	Erro any `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func (c *Client) Lookup(ctx context.Context, rawCEP string) (Address, error) {
	code := validation.NormalizeDigits(rawCEP)
	if len(code) != 8 {
		return Address{}, ErrInvalidCEP
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+code+"/json/", nil)
	if err != nil {
		return Address{}, fmt.Errorf("build cep request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Address{}, fmt.Errorf("%w: %s", ErrTimeout, code)
		}
		return Address{}, fmt.Errorf("request cep %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return Address{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("viacep failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Address{}, fmt.Errorf("%w: %s", ErrTimeout, code)
		}
		return Address{}, fmt.Errorf("read cep response: %w", err)
	}

	var payload viaCEPResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Address{}, fmt.Errorf("decode cep response: %w", err)
	}
	if payload.notFound() {
		return Address{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return payload.Address, nil
}
