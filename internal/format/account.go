package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/jafarshop/shopgateway/internal/domain"
)

const (
	NoAddresses     = "You don't have any saved addresses yet."
	NoCards         = "You don't have any saved payment methods yet."
	NoSubscriptions = "You don't have any active subscriptions."
)

// Profile renders the account holder's details
func Profile(p domain.Profile) (string, error) {
	if err := requireField("profile", "user.id", p.User.ID); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Your Profile\n\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotSet(p.User.Name))
	fmt.Fprintf(&b, "Email: %s\n", orNotSet(p.User.Email))
	fmt.Fprintf(&b, "User ID: %s\n", p.User.ID)
	fmt.Fprintf(&b, "SSH Key Fingerprint: %s\n", orNotSet(p.User.Fingerprint))
	if p.User.StripeCustomerID != "" {
		fmt.Fprintf(&b, "Stripe Customer ID: %s\n", p.User.StripeCustomerID)
	}
	return b.String(), nil
}

// ProfileUpdated confirms a profile change
func ProfileUpdated(p domain.Profile) (string, error) {
	if err := requireField("profile", "user.id", p.User.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Profile updated successfully:\nName: %s\nEmail: %s",
		orNotSet(p.User.Name), orNotSet(p.User.Email)), nil
}

// Addresses renders the saved shipping addresses
func Addresses(addresses []domain.Address) (string, error) {
	var b strings.Builder
	b.WriteString("# Your Shipping Addresses\n\n")

	if len(addresses) == 0 {
		b.WriteString(NoAddresses)
		return b.String(), nil
	}

	for _, a := range addresses {
		if err := requireField("address", "id", a.ID); err != nil {
			return "", err
		}
		if err := requireField("address", "name", a.Name); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "## %s\n", a.Name)
		fmt.Fprintf(&b, "ID: %s\n", a.ID)
		fmt.Fprintf(&b, "%s\n", a.Street1)
		if present(a.Street2) {
			fmt.Fprintf(&b, "%s\n", *a.Street2)
		}
		fmt.Fprintf(&b, "%s\n", locality(a.City, a.Province, a.Zip))
		fmt.Fprintf(&b, "%s\n", a.Country)
		if present(a.Phone) {
			fmt.Fprintf(&b, "Phone: %s\n", *a.Phone)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// Cards renders the stored payment methods
func Cards(cards []domain.Card) (string, error) {
	var b strings.Builder
	b.WriteString("# Your Payment Methods\n\n")

	if len(cards) == 0 {
		b.WriteString(NoCards)
		return b.String(), nil
	}

	for _, c := range cards {
		if err := requireField("card", "id", c.ID); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "## %s •••• %s\n", c.Brand, c.Last4)
		fmt.Fprintf(&b, "ID: %s\n", c.ID)
		fmt.Fprintf(&b, "Expires: %02d/%d\n\n", c.Expiration.Month, c.Expiration.Year)
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// CardCollection points the user at the hosted card entry form
func CardCollection(c domain.CardCollection) (string, error) {
	if err := requireField("card collection", "url", c.URL); err != nil {
		return "", err
	}
	return fmt.Sprintf("Please use this URL to securely enter your card details: %s\n"+
		"After completing the form, your card will be added to your account.", c.URL), nil
}

// Subscriptions renders recurring orders. The schedule section and next
// delivery date appear only when upstream supplies them.
func Subscriptions(subscriptions []domain.Subscription) (string, error) {
	var b strings.Builder
	b.WriteString("# Your Subscriptions\n\n")

	if len(subscriptions) == 0 {
		b.WriteString(NoSubscriptions)
		return b.String(), nil
	}

	for i, s := range subscriptions {
		if err := requireField("subscription", "id", s.ID); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "## Subscription %d\n", i+1)
		fmt.Fprintf(&b, "ID: %s\n", s.ID)
		fmt.Fprintf(&b, "Product Variant ID: %s\n", s.ProductVariantID)
		fmt.Fprintf(&b, "Quantity: %d\n", s.Quantity)
		fmt.Fprintf(&b, "Shipping Address ID: %s\n", s.AddressID)
		fmt.Fprintf(&b, "Payment Method ID: %s\n", s.CardID)

		if s.Schedule != nil {
			b.WriteString("\n### Schedule\n")
			fmt.Fprintf(&b, "Type: %s\n", s.Schedule.Type)
			if s.Schedule.Interval != nil {
				fmt.Fprintf(&b, "Interval: Every %d %s\n", *s.Schedule.Interval, intervalUnit(s.Schedule.Type))
			}
		}
		if present(s.Next) {
			fmt.Fprintf(&b, "Next Delivery: %s\n", deliveryDate(*s.Next))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func intervalUnit(t domain.ScheduleType) string {
	if t == domain.ScheduleWeekly {
		return "weeks"
	}
	return "periods"
}

// deliveryDate shortens an RFC 3339 timestamp and passes anything else through
func deliveryDate(raw string) string {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return ts.UTC().Format("Jan 2, 2006")
}

// TokenCreated shows a freshly created access token. This is the only time
// upstream returns the token value.
func TokenCreated(t domain.AccessToken) (string, error) {
	if err := requireField("token", "id", t.ID); err != nil {
		return "", err
	}
	if err := requireField("token", "token", t.Token); err != nil {
		return "", err
	}
	return fmt.Sprintf("Token created successfully!\n\nToken ID: %s\nToken: %s\n\n"+
		"IMPORTANT: Save this token securely. You won't be able to see the full token value again.",
		t.ID, t.Token), nil
}

// Created confirms a create command that only returns an identifier
func Created(entity, id string) (string, error) {
	if err := requireField(strings.ToLower(entity), "id", id); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s created successfully! %s ID: %s", entity, entity, id), nil
}

// AppData renders the aggregated account overview
func AppData(d domain.AppData) (string, error) {
	var b strings.Builder
	b.WriteString("# Terminal.shop Account Overview\n\n")

	b.WriteString("## Your Profile\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotSet(d.Profile.User.Name))
	fmt.Fprintf(&b, "Email: %s\n", orNotSet(d.Profile.User.Email))
	if d.Region != "" {
		fmt.Fprintf(&b, "Region: %s\n", d.Region)
	}
	b.WriteString("\n")

	b.WriteString("## Your Cart\n")
	if len(d.Cart.Items) == 0 {
		b.WriteString(EmptyCart + "\n\n")
	} else {
		fmt.Fprintf(&b, "Items in cart: %d\n", len(d.Cart.Items))
		fmt.Fprintf(&b, "Cart subtotal: %s\n\n", Money(cartSubtotal(d.Cart)))
	}

	b.WriteString("## Recent Orders\n")
	if len(d.Orders) == 0 {
		b.WriteString(NoOrders + "\n\n")
	} else {
		fmt.Fprintf(&b, "You have %d order(s).\n\n", len(d.Orders))
	}

	b.WriteString("## Subscriptions\n")
	if len(d.Subscriptions) == 0 {
		b.WriteString(NoSubscriptions + "\n\n")
	} else {
		fmt.Fprintf(&b, "You have %d active subscription(s).\n\n", len(d.Subscriptions))
	}

	b.WriteString("## Saved Details\n")
	fmt.Fprintf(&b, "Addresses: %d\n", len(d.Addresses))
	fmt.Fprintf(&b, "Payment methods: %d\n\n", len(d.Cards))

	b.WriteString("## Available Products\n")
	if len(d.Products) == 0 {
		b.WriteString(NoProducts + "\n")
	} else {
		fmt.Fprintf(&b, "%d products available in the shop.\n", len(d.Products))
	}
	return b.String(), nil
}
