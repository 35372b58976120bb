package providers

// PartitionItems distributes an order's items across its transactions
// by refund status: each item joins the first transaction whose refund
// flag matches the item's refunded flag. An item therefore never shows
// up twice under the same refund grouping; items with no matching
// transaction are omitted. Every transaction gets the order's ID
// stamped on it.
func PartitionItems(orderID string, items []Item, txns []OrderTransaction) []OrderTransaction {
	for i := range txns {
		txns[i].ID = orderID
	}

	for _, item := range items {
		for i := range txns {
			if txns[i].Refund == item.Refunded {
				txns[i].Items = append(txns[i].Items, item)
				break
			}
		}
	}

	return txns
}
