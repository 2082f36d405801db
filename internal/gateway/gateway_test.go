package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-importer/internal/models"
)

func expense() models.TransactionCandidate {
	return models.TransactionCandidate{
		ID:            "id-1",
		Owner:         "alice",
		Title:         "Reliance Mart",
		Amount:        decimal.RequireFromString("1250.00"),
		Category:      "Food",
		Kind:          models.KindExpense,
		Date:          "2024-03-01",
		PaymentMethod: models.PaymentMethodUnspecified,
	}
}

func TestUpload_RoutesByKind(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	item := expense()
	require.NoError(t, c.Upload(context.Background(), "alice", "tok", item))
	assert.Equal(t, "/expenses/add/", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Expenses", gotBody["Type"])
	assert.Equal(t, "Reliance Mart", gotBody["Title"])
	assert.Equal(t, 1250.00, gotBody["Amount"])

	item.Kind = models.KindIncome
	require.NoError(t, c.Upload(context.Background(), "alice", "tok", item))
	assert.Equal(t, "/income/add/", gotPath)
	assert.Equal(t, "Income", gotBody["Type"])
}

func TestUpload_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Upload(context.Background(), "alice", "tok", expense())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUpload_TransportFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, time.Second)
	assert.Error(t, c.Upload(context.Background(), "alice", "tok", expense()))
}

func TestFetchTransactions_MergesBothKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/expenses/alice/":
			json.NewEncoder(w).Encode([]map[string]any{
				{"Amount": 100.50, "Date": "2024-02-10"},
			})
		case "/incomes/alice/":
			json.NewEncoder(w).Encode([]map[string]any{
				{"Amount": "45000.00", "Date": "2024-02-01"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	items, err := c.FetchTransactions(context.Background(), "alice", "tok")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.KindExpense, items[0].Kind)
	assert.Equal(t, "100.5", items[0].Amount.String())
	assert.Equal(t, models.KindIncome, items[1].Kind)
	assert.Equal(t, "45000.00", items[1].Amount.StringFixed(2))
}

func TestFetchTransactions_ToleratesOneFailingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/incomes/alice/" {
			json.NewEncoder(w).Encode([]map[string]any{
				{"Amount": "500.00", "Date": "2024-02-01"},
			})
			return
		}
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	items, err := c.FetchTransactions(context.Background(), "alice", "tok")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.KindIncome, items[0].Kind)
}

func TestFetchTransactions_BothEndpointsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.FetchTransactions(context.Background(), "alice", "tok")
	assert.Error(t, err)
}

func TestFetchTransactions_SkipsUnparseableRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/expenses/alice/" {
			json.NewEncoder(w).Encode([]map[string]any{
				{"Amount": 10.0, "Date": "not-a-date"},
				{"Amount": 20.0, "Date": "2024-02-12"},
			})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	items, err := c.FetchTransactions(context.Background(), "alice", "tok")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2024-02-12", items[0].Date.Format("2006-01-02"))
}
