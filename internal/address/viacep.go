package address

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/cadastro/internal/domain"
)

// DefaultViaCEPURL is the public ViaCEP endpoint.
const DefaultViaCEPURL = "https://viacep.com.br"

// ViaCEPClient resolves CEPs against the ViaCEP web service.
type ViaCEPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries uint64
	backoff    time.Duration
}

// ViaCEPOption configures a ViaCEPClient.
type ViaCEPOption func(*ViaCEPClient)

// WithHTTPClient replaces the HTTP client. Its Timeout bounds each attempt.
func WithHTTPClient(c *http.Client) ViaCEPOption {
	return func(v *ViaCEPClient) { v.httpClient = c }
}

// WithRetries sets how many times a transient failure is retried and the
// base delay of the exponential backoff between attempts.
func WithRetries(n uint64, base time.Duration) ViaCEPOption {
	return func(v *ViaCEPClient) {
		v.maxRetries = n
		v.backoff = base
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) ViaCEPOption {
	return func(v *ViaCEPClient) { v.logger = l }
}

// NewViaCEPClient creates a client for the given base URL.
func NewViaCEPClient(baseURL string, opts ...ViaCEPOption) *ViaCEPClient {
	if baseURL == "" {
		baseURL = DefaultViaCEPURL
	}
	c := &ViaCEPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.Default(),
		maxRetries: 2,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// viaCEPResponse is the JSON body returned by /ws/{cep}/json/.
type viaCEPResponse struct {
	CEP         string     `json:"cep"`
	Logradouro  string     `json:"logradouro"`
	Complemento string     `json:"complemento"`
	Bairro      string     `json:"bairro"`
	Localidade  string     `json:"localidade"`
	UF          string     `json:"uf"`
	Erro        erroMarker `json:"erro"`
}

// erroMarker accepts both `"erro": true` and `"erro": "true"`.
type erroMarker bool

func (e *erroMarker) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	*e = erroMarker(s == "true")
	return nil
}

// Search resolves postalCode. Unknown CEPs return ErrNotFound. Transport
// errors and 5xx responses are retried and then reported as unavailable.
func (c *ViaCEPClient) Search(ctx context.Context, postalCode string) (*Address, error) {
	const op = "address.viacep.search"

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, url.PathEscape(postalCode))
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))

	var addr *Address
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		a, err := c.fetch(ctx, op, endpoint)
		if err != nil {
			if domain.IsCode(err, domain.EUNAVAILABLE) {
				c.logger.Debug("viacep attempt failed", "cep", postalCode, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		addr = a
		return nil
	})
	if err != nil {
		if ctx.Err() != nil && !domain.IsCode(err, domain.EUNAVAILABLE) {
			return nil, domain.Unavailable(err, op, "CEP lookup cancelled")
		}
		return nil, err
	}
	if addr.PostalCode == "" {
		addr.PostalCode = postalCode
	}
	return addr, nil
}

func (c *ViaCEPClient) fetch(ctx context.Context, op, endpoint string) (*Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, op, "CEP service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.Unavailable(fmt.Errorf("status %d", resp.StatusCode), op, "CEP service error")
	case resp.StatusCode >= 400:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.Errorf(domain.EINVALID, op, "CEP rejected by service (status %d)", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return nil, domain.Unavailable(err, op, "malformed CEP response")
	}
	if body.Erro {
		return nil, ErrNotFound
	}

	addr := &Address{
		PostalCode:   strings.ReplaceAll(body.CEP, "-", ""),
		Street:       strings.TrimSpace(body.Logradouro),
		Complement:   strings.TrimSpace(body.Complemento),
		Neighborhood: strings.TrimSpace(body.Bairro),
		City:         strings.TrimSpace(body.Localidade),
		State:        strings.TrimSpace(body.UF),
	}
	if !addr.Resolved() {
		return nil, ErrNotFound
	}
	return addr, nil
}
