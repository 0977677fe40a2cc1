package services

import (
	"math"

	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
)

// CartLine is one product line of the cart. UnitPrice comes from the store's
// tax engine and is final for the chosen tax-inclusion mode.
type CartLine struct {
	ProductName string
	ProductCode string
	Quantity    int
	UnitPrice   float64
}

// AttributePrice is a priced checkout attribute, like gift wrap.
type AttributePrice struct {
	Name  string
	Price float64
}

// CheckoutSummary is the assembled pricing view of one order, with amounts
// already computed by the store's cart, tax and shipping services.
type CheckoutSummary struct {
	Lines            []CartLine
	Attributes       []AttributePrice
	PaymentSurcharge float64
	ShippingCharge   float64
	RequiresShipping bool
	Tax              float64
	OrderTotal       float64
}

// AssembleLineItems turns the checkout summary into the gateway's line item
// list. The gateway independently checks that items plus tax equal the
// transaction amount, so when upstream discounts leave the item sum above
// the order total, a single negative adjustment line labeled as a discount
// closes the gap.
func AssembleLineItems(s CheckoutSummary) []qualpay.LineItem {
	items := make([]qualpay.LineItem, 0, len(s.Lines)+len(s.Attributes)+3)

	for _, line := range s.Lines {
		items = append(items, qualpay.NewLineItem(line.ProductName, line.ProductCode, line.Quantity, round2(line.UnitPrice)))
	}

	for _, attr := range s.Attributes {
		if attr.Price > 0 {
			items = append(items, qualpay.NewLineItem(attr.Name, "CHECKOUTATTR", 1, round2(attr.Price)))
		}
	}

	if s.PaymentSurcharge > 0 {
		items = append(items, qualpay.NewLineItem("Payment method fee", "PAYMENTFEE", 1, round2(s.PaymentSurcharge)))
	}

	if s.RequiresShipping && s.ShippingCharge > 0 {
		items = append(items, qualpay.NewLineItem("Shipping", "SHIPPING", 1, round2(s.ShippingCharge)))
	}

	var itemsTotal float64
	for _, item := range items {
		itemsTotal += item.UnitPrice * float64(item.Quantity)
	}

	difference := round2(s.OrderTotal - itemsTotal - s.Tax)
	if difference < 0 {
		items = append(items, qualpay.NewLineItem("Discount", "DISCOUNT", 1, difference))
	}

	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
