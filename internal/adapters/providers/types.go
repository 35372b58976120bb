package providers

import (
	"context"
)

// AuthStatus is the outcome of probing whether the ambient session is
// still authenticated with a provider.
type AuthStatus string

const (
	AuthSuccess     AuthStatus = "success"
	AuthNotLoggedIn AuthStatus = "not_logged_in"
	AuthFailure     AuthStatus = "failure"
	AuthPending     AuthStatus = "pending"
)

// AuthProbe is the result of an auth probe. StartingYear is the
// earliest year the provider has order history for and is only
// meaningful when Status is AuthSuccess.
type AuthProbe struct {
	Status       AuthStatus `json:"status"`
	StartingYear int        `json:"startingYear,omitempty"`
}

// Stage identifies which phase of a provider sync is running.
type Stage string

const (
	StageIdle     Stage = "idle"
	StagePageScan Stage = "page-scan"
	StageDownload Stage = "download"
	StageComplete Stage = "complete"
)

// Progress is one progress snapshot emitted while a sync runs. Total
// and Complete count listing pages during the page-scan stage and
// orders during the download stage. Complete never decreases within a
// stage.
type Progress struct {
	Provider string `json:"provider"`
	Stage    Stage  `json:"stage"`
	Total    int    `json:"total"`
	Complete int    `json:"complete"`
}

// ProgressFunc receives progress snapshots. It is called synchronously
// after each unit of work completes, so implementations should return
// quickly and must tolerate bursty call timing.
type ProgressFunc func(Progress)

// Order is one purchase as listed by a storefront's order history.
// It is created from a listing page record and enriched in place with
// transactions once its detail page has been fetched. The identity
// fields never change after creation.
type Order struct {
	ID            string             `json:"id"`
	Date          string             `json:"date"`
	StorePurchase bool               `json:"storePurchase,omitempty"`
	Transactions  []OrderTransaction `json:"transactions,omitempty"`
}

// Item is a single line item parsed from an order detail page.
type Item struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Refunded bool    `json:"refunded"`
}

// OrderTransaction is one financial event tied to an order: a shipment
// charge, a gift card charge, or a refund. Items holds the subset of
// the order's items whose refunded flag matches the transaction's
// refund flag; an item never appears in two transactions of the same
// refund status.
type OrderTransaction struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Refund bool    `json:"refund"`
	Items  []Item  `json:"items"`
}

// FetchOptions configures one FetchOrders invocation.
type FetchOptions struct {
	// Year filters order history to a single year. Zero means the
	// provider's default view, which is the current year.
	Year int

	// MaxPages caps how many listing pages are scanned. Zero means no
	// cap beyond what the provider reports.
	MaxPages int

	// OnProgress, when non-nil, observes the sync as it runs.
	OnProgress ProgressFunc
}

// Provider is the capability set every storefront implements. The
// pipeline and its callers depend only on this interface, never on a
// concrete storefront.
type Provider interface {
	// Name is the stable lowercase identifier, e.g. "amazon".
	Name() string
	// DisplayName is the human-facing name, e.g. "Amazon".
	DisplayName() string

	// ProbeAuth checks whether the ambient session is still
	// authenticated. Internal errors are reported as AuthFailure,
	// never returned.
	ProbeAuth(ctx context.Context) AuthProbe

	// FetchOrders runs the full pipeline for one provider: listing
	// scan, bounded-concurrency detail fetch, progress emission.
	// Orders whose detail fetch failed are dropped from the result.
	FetchOrders(ctx context.Context, opts FetchOptions) ([]Order, error)

	// FetchOrderTransactions enriches one order with its transactions
	// by fetching and parsing its detail page.
	FetchOrderTransactions(ctx context.Context, order Order) (Order, error)
}
