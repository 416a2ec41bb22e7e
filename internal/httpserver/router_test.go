package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
	couponsvc "shopflow/internal/service/coupon"
	shipmentsvc "shopflow/internal/service/shipment"
)

type stubCouponRepo struct {
	byID map[string]*domain.Coupon
}

func (s *stubCouponRepo) Create(_ context.Context, c *domain.Coupon) error { return nil }

func (s *stubCouponRepo) GetByID(_ context.Context, id string) (*domain.Coupon, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCouponRepo) GetByCode(_ context.Context, _ string) (*domain.Coupon, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCouponRepo) ListExpiring(_ context.Context, _ time.Time, _ int) ([]domain.Coupon, error) {
	return nil, nil
}

func (s *stubCouponRepo) Update(_ context.Context, _ *domain.Coupon) error { return nil }

type stubShipmentRepo struct {
	byID map[string]*domain.Shipment
}

func (s *stubShipmentRepo) Create(_ context.Context, _ *domain.Shipment, _ ...outbox.Record) error {
	return nil
}

func (s *stubShipmentRepo) GetByID(_ context.Context, id string) (*domain.Shipment, error) {
	if sh, ok := s.byID[id]; ok {
		return sh, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubShipmentRepo) GetByOrderID(_ context.Context, _ string) (*domain.Shipment, error) {
	return nil, domain.ErrNotFound
}

func (s *stubShipmentRepo) Update(_ context.Context, _ *domain.Shipment, _ ...outbox.Record) error {
	return nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	coupons := couponsvc.New(&stubCouponRepo{byID: map[string]*domain.Coupon{}}, zap.NewNop())
	shipments := shipmentsvc.New(&stubShipmentRepo{byID: map[string]*domain.Shipment{
		"pending": {ID: "pending", OrderID: "o1", Status: domain.ShipmentStatusPending},
	}})
	return buildRouter(zap.NewNop(), nil, Deps{
		Coupons:   coupons,
		Shipments: shipments,
	}, nil)
}

func TestHealthz(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", w.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", w.Code)
	}
}

func TestOrdersRequireActor(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing X-User-ID = %d, want 401", w.Code)
	}
}

func TestUnknownCouponMapsTo404(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coupons/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing coupon = %d, want 404", w.Code)
	}
}

func TestInvalidTransitionMapsTo409(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	// delivering a pending shipment skips the shipped state
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/shipments/pending/deliver", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("invalid transition = %d, want 409", w.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d, want 200", w.Code)
	}
}
