package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jafarshop/shopgateway/internal/domain"
)

// NoProducts is rendered instead of an empty listing
const NoProducts = "No products are available right now."

// Products renders the full product listing
func Products(products []domain.Product) (string, error) {
	var b strings.Builder
	b.WriteString("# Available Products from Terminal.shop\n\n")

	if len(products) == 0 {
		b.WriteString(NoProducts)
		return b.String(), nil
	}
	if err := writeProductSummaries(&b, products); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SearchResults renders the products matching query. An empty query is
// rendered like the full listing.
func SearchResults(query string, products []domain.Product) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Products(products)
	}
	if len(products) == 0 {
		return fmt.Sprintf("No products found matching %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Products matching %q\n\n", query)
	if err := writeProductSummaries(&b, products); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeProductSummaries(b *strings.Builder, products []domain.Product) error {
	for _, p := range products {
		if err := validateProduct(p); err != nil {
			return err
		}
		fmt.Fprintf(b, "## %s\n", p.Name)
		fmt.Fprintf(b, "ID: %s\n", p.ID)
		if p.Description != "" {
			fmt.Fprintf(b, "%s\n", p.Description)
		}
		b.WriteString("\nVariants:\n")
		for _, v := range p.Variants {
			fmt.Fprintf(b, "- %s: %s (ID: %s)\n", v.Name, Money(v.Price), v.ID)
		}
		b.WriteString("\n")
	}
	return nil
}

// ProductDetails renders a single product with its variants, subscription
// policy and tags.
func ProductDetails(p domain.Product) (string, error) {
	if err := validateProduct(p); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "ID: %s\n\n", p.ID)
	if p.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", p.Description)
	}

	b.WriteString("## Available Variants\n")
	for _, v := range p.Variants {
		fmt.Fprintf(&b, "### %s\n", v.Name)
		fmt.Fprintf(&b, "- Price: %s\n", Money(v.Price))
		fmt.Fprintf(&b, "- ID: %s\n\n", v.ID)
	}

	if p.Subscription != nil && p.Subscription.IsValid() {
		verb := "allows"
		if *p.Subscription == domain.SubscriptionRequired {
			verb = "requires"
		}
		fmt.Fprintf(&b, "## Subscription Options\nThis product %s subscription.\n\n", verb)
	}

	if len(p.Tags) > 0 {
		keys := make([]string, 0, len(p.Tags))
		for k := range p.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("## Product Tags\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, p.Tags[k])
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func validateProduct(p domain.Product) error {
	if err := requireField("product", "id", p.ID); err != nil {
		return err
	}
	if err := requireField("product", "name", p.Name); err != nil {
		return err
	}
	for _, v := range p.Variants {
		if err := requireField("variant", "id", v.ID); err != nil {
			return err
		}
		if err := requireField("variant", "name", v.Name); err != nil {
			return err
		}
	}
	return nil
}
