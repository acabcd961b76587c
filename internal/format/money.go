// Package format renders upstream payloads as human-readable text. Every
// function is pure: the same input always yields the same output.
package format

import (
	"fmt"
	"strings"

	"github.com/jafarshop/shopgateway/pkg/errors"
)

// Money renders an amount in minor units as dollars with two decimals.
// It is the only place minor units are converted for display.
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// total prefers the upstream total and falls back to subtotal + shipping,
// summed in minor units before formatting.
func total(subtotal, shipping int64, upstreamTotal *int64) int64 {
	if upstreamTotal != nil {
		return *upstreamTotal
	}
	return subtotal + shipping
}

func requireField(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &errors.FormatError{Entity: entity, Field: field}
	}
	return nil
}

func orNotSet(v *string) string {
	if v == nil || *v == "" {
		return "Not set"
	}
	return *v
}

func present(v *string) bool {
	return v != nil && *v != ""
}

// locality renders "City, Province Zip", dropping the province when absent
func locality(city string, province *string, zip string) string {
	if present(province) {
		return fmt.Sprintf("%s, %s %s", city, *province, zip)
	}
	return fmt.Sprintf("%s %s", city, zip)
}
