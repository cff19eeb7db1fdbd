package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/sqlite"
)

func setupServer(t *testing.T) *httptest.Server {
	repo, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(repo)))
	t.Cleanup(srv.Close)
	return srv
}

func postOrder(t *testing.T, srv *httptest.Server, body string) (*http.Response, OrderResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/orders", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out OrderResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestCreateAndGetOrder(t *testing.T) {
	srv := setupServer(t)

	resp, created := postOrder(t, srv, `{
		"id": "1",
		"customer_id": "customer_1",
		"items": [
			{"id": "item_1", "name": "Widget", "price": 10, "product_id": "product_1", "quantity": 1}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 10.0, created.Total)

	getResp, err := http.Get(srv.URL + "/orders/1")
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var found OrderResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&found))
	assert.Equal(t, created, found)
}

func TestCreateMintsMissingIDs(t *testing.T) {
	srv := setupServer(t)

	resp, created := postOrder(t, srv, `{
		"customer_id": "customer_1",
		"items": [
			{"name": "Widget", "price": 5, "product_id": "product_1", "quantity": 2}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ID)
	require.Len(t, created.Items, 1)
	assert.NotEmpty(t, created.Items[0].ID)
}

func TestCreateRejectsInvalidItem(t *testing.T) {
	srv := setupServer(t)

	resp, _ := postOrder(t, srv, `{
		"customer_id": "customer_1",
		"items": [{"name": "Widget", "price": 0, "product_id": "p1", "quantity": 1}]
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateDuplicateIDConflicts(t *testing.T) {
	srv := setupServer(t)

	body := `{"id": "1", "customer_id": "customer_1", "items": []}`
	resp, _ := postOrder(t, srv, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = postOrder(t, srv, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetOrderNotFound(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/orders/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "order_not_found", out.Error)
}

func TestUpdateOrder(t *testing.T) {
	srv := setupServer(t)

	resp, _ := postOrder(t, srv, `{
		"id": "1",
		"customer_id": "customer_1",
		"items": [{"id": "item_1", "name": "Widget", "price": 10, "product_id": "p1", "quantity": 1}]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/orders/1", bytes.NewBufferString(`{
		"customer_id": "customer_2",
		"items": [{"id": "item_1", "name": "Widget", "price": 10, "product_id": "p1", "quantity": 3}]
	}`))
	require.NoError(t, err)
	updResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer updResp.Body.Close()
	require.Equal(t, http.StatusOK, updResp.StatusCode)

	getResp, err := http.Get(srv.URL + "/orders/1")
	require.NoError(t, err)
	defer getResp.Body.Close()

	var found OrderResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&found))
	assert.Equal(t, "customer_2", found.CustomerID)
	assert.Equal(t, 30.0, found.Total)
}

func TestUpdateOrderNotFound(t *testing.T) {
	srv := setupServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/orders/missing",
		bytes.NewBufferString(`{"customer_id": "customer_1", "items": []}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOrdersInsertionOrder(t *testing.T) {
	srv := setupServer(t)

	for _, id := range []string{"1", "2"} {
		resp, _ := postOrder(t, srv, `{
			"id": "`+id+`",
			"customer_id": "customer_`+id+`",
			"items": [{"id": "item_`+id+`", "name": "Widget", "price": 10, "product_id": "p`+id+`", "quantity": 1}]
		}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, "2", orders[1].ID)
}
