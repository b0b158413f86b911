package address

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/cadastro/internal/domain"
)

func newTestClient(srv *httptest.Server) *ViaCEPClient {
	return NewViaCEPClient(srv.URL, WithRetries(2, time.Millisecond))
}

func TestViaCEPClient_Search(t *testing.T) {
	t.Run("resolves an address", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ws/01310100/json/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","complemento":"de 612 a 1510 - lado par","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
		}))
		defer srv.Close()

		addr, err := newTestClient(srv).Search(context.Background(), "01310100")

		require.NoError(t, err)
		assert.Equal(t, &Address{
			PostalCode:   "01310100",
			Street:       "Avenida Paulista",
			Complement:   "de 612 a 1510 - lado par",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
		}, addr)
	})

	t.Run("erro marker means not found", func(t *testing.T) {
		for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))

			_, err := newTestClient(srv).Search(context.Background(), "99999999")
			srv.Close()

			assert.ErrorIs(t, err, ErrNotFound, body)
			assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		}
	})

	t.Run("empty street and neighborhood is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"cep":"13560-970","logradouro":"","bairro":"","localidade":"São Carlos","uf":"SP"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv).Search(context.Background(), "13560970")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
		}))
		defer srv.Close()

		addr, err := newTestClient(srv).Search(context.Background(), "01310100")

		require.NoError(t, err)
		assert.Equal(t, "Avenida Paulista", addr.Street)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("persistent server errors are unavailable", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(srv).Search(context.Background(), "01310100")

		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
		assert.Equal(t, int32(3), hits.Load(), "one attempt plus two retries")
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(srv).Search(context.Background(), "0131")

		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := newTestClient(srv).Search(context.Background(), "01310100")
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	})

	t.Run("cancelled context is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(srv).Search(ctx, "01310100")
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	})
}

func TestCachedLookup(t *testing.T) {
	t.Run("caches successful lookups", func(t *testing.T) {
		mock := NewMockLookup()
		lookup := NewCachedLookup(mock, time.Minute)

		first, err := lookup.Search(context.Background(), "01310100")
		require.NoError(t, err)
		second, err := lookup.Search(context.Background(), "01310100")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, mock.CallCount())
	})

	t.Run("does not cache failures", func(t *testing.T) {
		mock := &MockLookup{SearchFunc: func(ctx context.Context, cep string) (*Address, error) {
			return nil, ErrNotFound
		}}
		lookup := NewCachedLookup(mock, time.Minute)

		_, err := lookup.Search(context.Background(), "99999999")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = lookup.Search(context.Background(), "99999999")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Equal(t, 2, mock.CallCount())
	})

	t.Run("cached copy cannot be mutated by callers", func(t *testing.T) {
		lookup := NewCachedLookup(NewMockLookup(), time.Minute)

		a, _ := lookup.Search(context.Background(), "01310100")
		a.Street = "changed"

		b, _ := lookup.Search(context.Background(), "01310100")
		assert.Equal(t, "Avenida Paulista", b.Street)
	})
}

func TestAddress_Resolved(t *testing.T) {
	var nilAddr *Address
	assert.False(t, nilAddr.Resolved())
	assert.False(t, (&Address{Street: "Rua A"}).Resolved())
	assert.False(t, (&Address{Neighborhood: "Centro"}).Resolved())
	assert.True(t, (&Address{Street: "Rua A", Neighborhood: "Centro"}).Resolved())
}
