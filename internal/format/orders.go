package format

import (
	"fmt"
	"strings"

	"github.com/jafarshop/shopgateway/internal/domain"
)

const (
	EmptyCart = "Your cart is currently empty."
	NoOrders  = "You haven't placed any orders yet."
)

// Cart renders the caller's cart. Shipping and total lines appear once
// upstream has quoted shipping; the address, card and shipping service
// sections appear only when set.
func Cart(c domain.Cart) (string, error) {
	var b strings.Builder
	b.WriteString("# Your Shopping Cart\n\n")

	if len(c.Items) == 0 {
		b.WriteString(EmptyCart)
		return b.String(), nil
	}
	if err := validateCart(c); err != nil {
		return "", err
	}

	b.WriteString("## Cart Items\n")
	for _, item := range c.Items {
		fmt.Fprintf(&b, "- Quantity: %d, Variant ID: %s, Subtotal: %s\n",
			item.Quantity, item.ProductVariantID, Money(item.Subtotal))
	}
	b.WriteString("\n")
	writeCartTotals(&b, c)

	if present(c.AddressID) || present(c.CardID) {
		b.WriteString("\n")
	}
	if present(c.AddressID) {
		fmt.Fprintf(&b, "Shipping Address ID: %s\n", *c.AddressID)
	}
	if present(c.CardID) {
		fmt.Fprintf(&b, "Payment Method ID: %s\n", *c.CardID)
	}

	if c.Shipping != nil {
		b.WriteString("\n## Shipping\n")
		fmt.Fprintf(&b, "Service: %s\n", c.Shipping.Service)
		fmt.Fprintf(&b, "Timeframe: %s\n", c.Shipping.Timeframe)
	}

	return b.String(), nil
}

// CartUpdated confirms an add-to-cart and summarises the resulting cart
func CartUpdated(c domain.Cart) (string, error) {
	if err := validateCart(c); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Successfully added item to your cart.\n\n")
	b.WriteString("## Cart Summary\n")
	fmt.Fprintf(&b, "Items: %d\n", len(c.Items))
	writeCartTotals(&b, c)
	return b.String(), nil
}

func writeCartTotals(b *strings.Builder, c domain.Cart) {
	subtotal := cartSubtotal(c)
	fmt.Fprintf(b, "Subtotal: %s\n", Money(subtotal))
	if c.Amount.Shipping != nil {
		fmt.Fprintf(b, "Shipping: %s\n", Money(*c.Amount.Shipping))
		fmt.Fprintf(b, "Total: %s\n", Money(total(subtotal, *c.Amount.Shipping, c.Amount.Total)))
	}
}

// cartSubtotal reads amount.subtotal, then the top-level field, and sums
// the line items when upstream sent neither
func cartSubtotal(c domain.Cart) int64 {
	if c.Amount.Subtotal != nil {
		return *c.Amount.Subtotal
	}
	if c.Subtotal != nil {
		return *c.Subtotal
	}
	var sum int64
	for _, item := range c.Items {
		sum += item.Subtotal
	}
	return sum
}

func validateCart(c domain.Cart) error {
	for _, item := range c.Items {
		if err := requireField("cart item", "productVariantID", item.ProductVariantID); err != nil {
			return err
		}
	}
	return nil
}

// Orders renders the order history
func Orders(orders []domain.Order) (string, error) {
	var b strings.Builder
	b.WriteString("# Your Order History\n\n")

	if len(orders) == 0 {
		b.WriteString(NoOrders)
		return b.String(), nil
	}

	for _, o := range orders {
		if err := requireField("order", "id", o.ID); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "## Order ID: %s\n", o.ID)
		if o.Index != nil {
			fmt.Fprintf(&b, "Order Index: %d\n", *o.Index)
		}
		b.WriteString("\n")
		writeOrderBody(&b, o)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// Checkout renders the order produced by converting the cart
func Checkout(o domain.Order) (string, error) {
	if err := requireField("order", "id", o.ID); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Order Placed Successfully\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n\n", o.ID)
	writeOrderBody(&b, o)
	return b.String(), nil
}

// OrderCreated confirms a direct order
func OrderCreated(orderID string) (string, error) {
	if err := requireField("order", "id", orderID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Order created successfully! Order ID: %s", orderID), nil
}

func writeOrderBody(b *strings.Builder, o domain.Order) {
	s := o.Shipping
	b.WriteString("### Shipping Details\n")
	fmt.Fprintf(b, "Name: %s\n", s.Name)
	if present(s.Street2) {
		fmt.Fprintf(b, "Address: %s, %s\n", s.Street1, *s.Street2)
	} else {
		fmt.Fprintf(b, "Address: %s\n", s.Street1)
	}
	fmt.Fprintf(b, "%s\n", locality(s.City, s.Province, s.Zip))
	fmt.Fprintf(b, "Country: %s\n", s.Country)
	if present(s.Phone) {
		fmt.Fprintf(b, "Phone: %s\n", *s.Phone)
	}

	if o.Tracking != nil {
		b.WriteString("\n### Tracking Information\n")
		fmt.Fprintf(b, "Service: %s\n", o.Tracking.Service)
		fmt.Fprintf(b, "Tracking Number: %s\n", o.Tracking.Number)
		if o.Tracking.URL != "" {
			fmt.Fprintf(b, "Tracking URL: %s\n", o.Tracking.URL)
		}
	}

	b.WriteString("\n### Items\n")
	for _, item := range o.Items {
		line := fmt.Sprintf("- Quantity: %d, Amount: %s", item.Quantity, Money(item.Amount))
		if present(item.Description) {
			line = fmt.Sprintf("- %s, Quantity: %d, Amount: %s", *item.Description, item.Quantity, Money(item.Amount))
		}
		if present(item.ProductVariantID) {
			line += fmt.Sprintf(", Variant ID: %s", *item.ProductVariantID)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n### Order Total\n")
	fmt.Fprintf(b, "Subtotal: %s\n", Money(o.Amount.Subtotal))
	fmt.Fprintf(b, "Shipping: %s\n", Money(o.Amount.Shipping))
	fmt.Fprintf(b, "Total: %s\n", Money(total(o.Amount.Subtotal, o.Amount.Shipping, o.Amount.Total)))
}
