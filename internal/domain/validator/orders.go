// Package validator provides sanity checks for synced orders.
//
// Extraction is heuristic: when a storefront's markup drifts, the
// symptom is strange data rather than a hard error. The checks here
// catch the common failure shapes (duplicate identifiers, unparseable
// amounts, items leaking across refund groupings) and report them as
// findings so callers can log them without aborting a sync.
//
// Example usage:
//
//	result := validator.ValidateOrders(orders)
//	for _, f := range result.Findings {
//		logger.Warn("order validation finding", "code", f.Code, "detail", f.Detail)
//	}
package validator

import (
	"fmt"
	"math"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

// Finding codes
const (
	// CodeMissingOrderID flags an order with an empty identifier
	CodeMissingOrderID = "missing_order_id"

	// CodeDuplicateOrder flags an order ID appearing more than once in a result
	CodeDuplicateOrder = "duplicate_order"

	// CodeAmountNaN flags a transaction whose amount failed to parse
	CodeAmountNaN = "amount_nan"

	// CodePriceNaN flags an item whose price failed to parse
	CodePriceNaN = "price_nan"

	// CodeDuplicateItem flags an item title appearing in two transactions
	// with the same refund flag
	CodeDuplicateItem = "duplicate_item"

	// CodeRefundMismatch flags an item whose refunded flag disagrees with
	// its transaction's refund flag
	CodeRefundMismatch = "refund_mismatch"
)

// Finding is one sanity problem detected in a synced order set.
type Finding struct {
	OrderID string `json:"order_id,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

// OrderValidation contains the result of validating a synced order set.
type OrderValidation struct {
	// Clean is true when no findings were recorded
	Clean bool

	// Findings lists every problem detected, in encounter order
	Findings []Finding
}

// ValidateOrders checks a full sync result for the failure shapes a
// drifted parser produces. It never rejects orders; callers decide what
// to do with the findings.
func ValidateOrders(orders []providers.Order) *OrderValidation {
	var findings []Finding

	seen := make(map[string]bool, len(orders))
	for _, order := range orders {
		if order.ID == "" {
			findings = append(findings, Finding{
				Code:   CodeMissingOrderID,
				Detail: "order has no identifier",
			})
		} else {
			if seen[order.ID] {
				findings = append(findings, Finding{
					OrderID: order.ID,
					Code:    CodeDuplicateOrder,
					Detail:  fmt.Sprintf("order %s appears more than once in the result", order.ID),
				})
			}
			seen[order.ID] = true
		}

		findings = append(findings, ValidateOrder(order)...)
	}

	return &OrderValidation{
		Clean:    len(findings) == 0,
		Findings: findings,
	}
}

// ValidateOrder checks one order's transactions and items.
//
// An item title may legitimately repeat inside a single transaction
// (two units bought as separate lines), so only repeats across distinct
// transactions of the same refund status count as duplicates.
func ValidateOrder(order providers.Order) []Finding {
	var findings []Finding

	firstTxn := make(map[string]int)
	for i, txn := range order.Transactions {
		if math.IsNaN(txn.Amount) {
			findings = append(findings, Finding{
				OrderID: order.ID,
				Code:    CodeAmountNaN,
				Detail:  fmt.Sprintf("transaction %d has an unparseable amount", i),
			})
		}

		for _, item := range txn.Items {
			if math.IsNaN(item.Price) {
				findings = append(findings, Finding{
					OrderID: order.ID,
					Code:    CodePriceNaN,
					Detail:  fmt.Sprintf("item %q has an unparseable price", item.Title),
				})
			}

			if item.Refunded != txn.Refund {
				findings = append(findings, Finding{
					OrderID: order.ID,
					Code:    CodeRefundMismatch,
					Detail: fmt.Sprintf("item %q (refunded=%t) grouped under a refund=%t transaction",
						item.Title, item.Refunded, txn.Refund),
				})
			}

			key := fmt.Sprintf("%t|%s", txn.Refund, item.Title)
			if prev, ok := firstTxn[key]; ok {
				if prev != i {
					findings = append(findings, Finding{
						OrderID: order.ID,
						Code:    CodeDuplicateItem,
						Detail: fmt.Sprintf("item %q appears in more than one refund=%t transaction",
							item.Title, txn.Refund),
					})
				}
			} else {
				firstTxn[key] = i
			}
		}
	}

	return findings
}
