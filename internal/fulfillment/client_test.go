package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testTicket() Ticket {
	return Ticket{
		Diner:    Diner{ID: "acc-1", Name: "Kai", Email: "kai@test.com"},
		Identity: "header.payload.sig",
		Order: Order{
			ID:          "ord-1",
			FranchiseID: "fr-1",
			StoreID:     "st-1",
			Items:       []Item{{MenuID: "m-1", Description: "Veggie", Price: 3800}},
			Total:       3800,
		},
	}
}

func TestFulfillSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer factory-key" {
			t.Errorf("missing factory key, got %q", got)
		}
		var ticket Ticket
		if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
			t.Errorf("decode ticket: %v", err)
		}
		if ticket.Order.ID != "ord-1" || ticket.Identity == "" {
			t.Errorf("unexpected ticket: %+v", ticket)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"jwt":        "factory.confirmation.token",
			"report_url": "https://factory.test/track/ord-1",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "factory-key")
	result, err := client.Fulfill(context.Background(), testTicket())
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Token != "factory.confirmation.token" {
		t.Fatalf("unexpected token: %q", result.Token)
	}
	if result.Report != "https://factory.test/track/ord-1" {
		t.Fatalf("unexpected report: %q", result.Report)
	}
}

func TestFulfillRejectionKeepsReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":    "ovens are down",
			"report_url": "https://factory.test/incidents/77",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	result, err := client.Fulfill(context.Background(), testTicket())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if result.Report != "https://factory.test/incidents/77" {
		t.Fatalf("report not salvaged: %q", result.Report)
	}
	if result.Token != "" {
		t.Fatalf("rejected delegation returned a token: %q", result.Token)
	}
}

func TestFulfillRejectsSuccessWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"report_url": "https://factory.test/track/x"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	if _, err := client.Fulfill(context.Background(), testTicket()); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestFulfillMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	if _, err := client.Fulfill(context.Background(), testTicket()); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestFulfillTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewHTTPClient(srv.URL, "")
	if _, err := client.Fulfill(context.Background(), testTicket()); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}
