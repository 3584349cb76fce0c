package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/handler"
	"github.com/shopspring/decimal"
)

type mockReportsStore struct {
	dailyFn   func(ctx context.Context, from, to time.Time) ([]database.DailySalesRow, error)
	productFn func(ctx context.Context, from, to time.Time) ([]database.ProductSalesRow, error)
}

func (m *mockReportsStore) GetDailySales(ctx context.Context, from, to time.Time) ([]database.DailySalesRow, error) {
	if m.dailyFn != nil {
		return m.dailyFn(ctx, from, to)
	}
	return []database.DailySalesRow{}, nil
}

func (m *mockReportsStore) GetProductSales(ctx context.Context, from, to time.Time) ([]database.ProductSalesRow, error) {
	if m.productFn != nil {
		return m.productFn(ctx, from, to)
	}
	return []database.ProductSalesRow{}, nil
}

func reportsGet(t *testing.T, store handler.ReportsStore, path string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewReportsHandler(store)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestDailySales_PassesExclusiveEndBound(t *testing.T) {
	var gotFrom, gotTo time.Time
	store := &mockReportsStore{
		dailyFn: func(_ context.Context, from, to time.Time) ([]database.DailySalesRow, error) {
			gotFrom, gotTo = from, to
			return []database.DailySalesRow{}, nil
		},
	}

	rr := reportsGet(t, store, "/reports/daily-sales?from=2026-08-01&to=2026-08-31")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if gotFrom.Format("2006-01-02") != "2026-08-01" {
		t.Errorf("from: got %s", gotFrom)
	}
	if gotTo.Format("2006-01-02") != "2026-09-01" {
		t.Errorf("to should be exclusive next day, got %s", gotTo)
	}
}

func TestDailySales_RejectsInvertedRange(t *testing.T) {
	rr := reportsGet(t, &mockReportsStore{}, "/reports/daily-sales?from=2026-08-31&to=2026-08-01")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProductSales_FormatsRows(t *testing.T) {
	store := &mockReportsStore{
		productFn: func(_ context.Context, _, _ time.Time) ([]database.ProductSalesRow, error) {
			return []database.ProductSalesRow{
				{Name: "Koshari", Quantity: 12, Total: database.DecimalToNumeric(decimal.RequireFromString("1320"))},
			}, nil
		},
	}

	rr := reportsGet(t, store, "/reports/product-sales")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var rows []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Koshari" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0]["total"] != "1320.00" {
		t.Errorf("total: got %v, want 1320.00", rows[0]["total"])
	}
	if rows[0]["quantity"].(float64) != 12 {
		t.Errorf("quantity: got %v, want 12", rows[0]["quantity"])
	}
}
