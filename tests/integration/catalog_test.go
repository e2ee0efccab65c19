//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts_NoPrincipal(t *testing.T) {
	resp := doGet(t, "/api/product", anonymous)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusUnauthorized {
		t.Errorf("error code: got %d, want 401", body.Code)
	}
}

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/product", asCustomer)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(products))
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			t.Errorf("product %+v missing id or name", p)
		}
		if p.Price <= 0 {
			t.Errorf("product %s price: got %v, want > 0", p.ID, p.Price)
		}
	}
}

func TestGetProduct_Discounted(t *testing.T) {
	resp := doGet(t, "/api/product/prd-chk-breast", asCustomer)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Price != 320 {
		t.Errorf("price: got %v, want 320", p.Price)
	}
	if p.Discount != 10 {
		t.Errorf("discount: got %v, want 10", p.Discount)
	}
	// 320 - 10% = 288
	if p.DiscountPrice != 288 {
		t.Errorf("discount price: got %v, want 288", p.DiscountPrice)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/product/prd-nonexistent", asCustomer)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetProductStock(t *testing.T) {
	resp := doGet(t, "/api/product/prd-chk-curry/stock", asManager)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	type stockEntry struct {
		ManagerID string `json:"managerId"`
		Quantity  int    `json:"quantity"`
	}
	stock := decodeJSON[[]stockEntry](t, resp)
	if len(stock) != 2 {
		t.Fatalf("expected 2 stock entries, got %d", len(stock))
	}

	byManager := make(map[string]int, len(stock))
	for _, s := range stock {
		byManager[s.ManagerID] = s.Quantity
	}
	if byManager["mgr-kor"] != 40 {
		t.Errorf("mgr-kor stock: got %d, want 40", byManager["mgr-kor"])
	}
}

func TestManagerRoute_CustomerForbidden(t *testing.T) {
	body := map[string]string{"price": "100", "discount": "0"}
	resp := doJSON(t, http.MethodPatch, "/api/product/prd-chk-curry/pricing", body, asCustomer)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
