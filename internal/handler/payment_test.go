package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-facility-booking/internal/model"
	"github.com/iliyamo/sports-facility-booking/internal/payment"
	"github.com/iliyamo/sports-facility-booking/internal/repository"
)

// stubStore keeps bookings in memory and records state transitions.
type stubStore struct {
	bookings map[uint64]*model.Booking
}

func (s *stubStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *stubStore) MarkPaid(_ context.Context, id uint64, txn string) error {
	b := s.bookings[id]
	b.PaymentStatus = model.PaymentPaid
	b.TransactionID = &txn
	return nil
}

func (s *stubStore) MarkPaymentFailed(_ context.Context, id uint64) error {
	b := s.bookings[id]
	if b.PaymentStatus == model.PaymentUnpaid {
		b.PaymentStatus = model.PaymentFailed
	}
	return nil
}

// stubGateway answers every charge with a fixed outcome.
type stubGateway struct {
	txnID  string
	err    error
	called int
}

func (g *stubGateway) Charge(context.Context, payment.ChargeRequest) (string, error) {
	g.called++
	if g.err != nil {
		return "", g.err
	}
	return g.txnID, nil
}

func unpaidBooking(owner uint64) *model.Booking {
	return &model.Booking{
		ID:            10,
		FacilityID:    3,
		UserID:        owner,
		StartMinutes:  840,
		EndMinutes:    960,
		AmountCents:   4000,
		Status:        model.BookingConfirmed,
		PaymentStatus: model.PaymentUnpaid,
	}
}

func doPay(t *testing.T, h *PaymentHandler, body string, userID uint64, role string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	if err := h.Pay(c); err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	return rec
}

func TestPaySuccess(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{10: unpaidBooking(7)}}
	gw := &stubGateway{txnID: "pi_123"}
	h := NewPaymentHandler(store, gw, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TransactionID != "pi_123" {
		t.Errorf("transactionId = %q, want pi_123", resp.TransactionID)
	}
	if store.bookings[10].PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", store.bookings[10].PaymentStatus)
	}
}

func TestPayDeclinedMarksFailed(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{10: unpaidBooking(7)}}
	gw := &stubGateway{err: payment.ErrCardDeclined}
	h := NewPaymentHandler(store, gw, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.bookings[10].PaymentStatus != model.PaymentFailed {
		t.Errorf("payment status = %s, want failed", store.bookings[10].PaymentStatus)
	}
}

func TestPayGatewayDownLeavesRecordUntouched(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{10: unpaidBooking(7)}}
	gw := &stubGateway{err: payment.ErrGatewayUnavailable}
	h := NewPaymentHandler(store, gw, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	// Unknown outcome: the booking must stay unpaid, not failed.
	if store.bookings[10].PaymentStatus != model.PaymentUnpaid {
		t.Errorf("payment status = %s, want unpaid", store.bookings[10].PaymentStatus)
	}
}

func TestPayAlreadyPaidReplaysStoredTransaction(t *testing.T) {
	b := unpaidBooking(7)
	txn := "pi_original"
	b.PaymentStatus = model.PaymentPaid
	b.TransactionID = &txn
	store := &stubStore{bookings: map[uint64]*model.Booking{10: b}}
	gw := &stubGateway{txnID: "pi_should_not_happen"}
	h := NewPaymentHandler(store, gw, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gw.called != 0 {
		t.Error("gateway charged an already paid booking")
	}
	var resp struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TransactionID != "pi_original" {
		t.Errorf("transactionId = %q, want the stored pi_original", resp.TransactionID)
	}
}

func TestPayCanceledBooking(t *testing.T) {
	b := unpaidBooking(7)
	b.Status = model.BookingCanceled
	store := &stubStore{bookings: map[uint64]*model.Booking{10: b}}
	h := NewPaymentHandler(store, &stubGateway{txnID: "pi_x"}, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPayForeignBookingHidden(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{10: unpaidBooking(7)}}
	gw := &stubGateway{txnID: "pi_x"}
	h := NewPaymentHandler(store, gw, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 99, model.RoleUser)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if gw.called != 0 {
		t.Error("gateway charged a booking the caller does not own")
	}
}

func TestPayAdminCanSettleAnyBooking(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{10: unpaidBooking(7)}}
	h := NewPaymentHandler(store, &stubGateway{txnID: "pi_admin"}, "usd")

	rec := doPay(t, h, `{"bookingId":10,"paymentMethodId":"pm_card"}`, 99, model.RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestPayUnknownBooking(t *testing.T) {
	h := NewPaymentHandler(&stubStore{bookings: map[uint64]*model.Booking{}}, &stubGateway{}, "usd")
	rec := doPay(t, h, `{"bookingId":55,"paymentMethodId":"pm_card"}`, 7, model.RoleUser)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPayValidation(t *testing.T) {
	h := NewPaymentHandler(&stubStore{bookings: map[uint64]*model.Booking{}}, &stubGateway{}, "usd")
	for _, body := range []string{`{}`, `{"bookingId":10}`, `{"paymentMethodId":"pm_card"}`} {
		rec := doPay(t, h, body, 7, model.RoleUser)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
