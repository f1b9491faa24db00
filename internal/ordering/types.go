package ordering

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("ordering: not found")
	ErrValidation = errors.New("ordering: invalid request")
)

// FulfillmentError is the fatal-class outcome of a failed factory
// delegation. The order it refers to is already persisted; Report is the
// tracking reference the caller can follow up with.
type FulfillmentError struct {
	Report string
}

func (e *FulfillmentError) Error() string {
	return "failed to fulfill order at factory"
}

// Franchise is a tenant; its authorization scope is its own identifier.
type Franchise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stores    []Store   `json:"stores"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a physical outlet; its authorization scope is the parent
// franchise identifier.
type Store struct {
	ID          string    `json:"id"`
	FranchiseID string    `json:"franchise_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// MenuItem is a purchasable catalog entry. Price is in cents.
type MenuItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order is a placed order; its authorization scope is the diner's account
// identifier, independent of which franchise or store fulfills it.
type Order struct {
	ID          string      `json:"id"`
	AccountID   string      `json:"account_id"`
	FranchiseID string      `json:"franchise_id"`
	StoreID     string      `json:"store_id"`
	Items       []OrderItem `json:"items"`
	Total       int64       `json:"total"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// OrderItem is one order line, priced from the menu at placement time.
type OrderItem struct {
	MenuID      string `json:"menu_id"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// OrderRequest is the client's placement request: line items referencing
// menu entries for a specific store.
type OrderRequest struct {
	FranchiseID string      `json:"franchise_id"`
	StoreID     string      `json:"store_id"`
	Items       []OrderLine `json:"items"`
}

// OrderLine names one requested menu entry.
type OrderLine struct {
	MenuID string `json:"menu_id"`
}

// Receipt is the coordinator's success outcome: the persisted order, the
// factory's fulfillment token, and a caller-facing tracking reference.
type Receipt struct {
	Order            Order  `json:"order"`
	FulfillmentToken string `json:"fulfillment_token"`
	Report           string `json:"report_url,omitempty"`
}
