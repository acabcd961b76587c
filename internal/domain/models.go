package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a sellable item in the shop
type Product struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Variants     []Variant           `json:"variants"`
	Order        *int                `json:"order,omitempty"`
	Subscription *SubscriptionPolicy `json:"subscription,omitempty"`
	Tags         map[string]string   `json:"tags,omitempty"`
}

// Variant is a purchasable SKU of a product. Price is in cents.
type Variant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Cart is the caller's in-progress order
type Cart struct {
	Items     []CartItem    `json:"items"`
	Subtotal  *int64        `json:"subtotal,omitempty"`
	AddressID *string       `json:"addressID,omitempty"`
	CardID    *string       `json:"cardID,omitempty"`
	Amount    CartAmount    `json:"amount"`
	Shipping  *CartShipping `json:"shipping,omitempty"`
}

type CartItem struct {
	ID               string `json:"id"`
	ProductVariantID string `json:"productVariantID"`
	Quantity         int    `json:"quantity"`
	Subtotal         int64  `json:"subtotal"`
}

type CartAmount struct {
	Subtotal *int64 `json:"subtotal,omitempty"`
	Shipping *int64 `json:"shipping,omitempty"`
	Total    *int64 `json:"total,omitempty"`
}

type CartShipping struct {
	Service   string `json:"service"`
	Timeframe string `json:"timeframe"`
}

// Order is a finalized purchase
type Order struct {
	ID       string         `json:"id"`
	Index    *int           `json:"index,omitempty"`
	Shipping OrderShipping  `json:"shipping"`
	Amount   OrderAmount    `json:"amount"`
	Tracking *OrderTracking `json:"tracking,omitempty"`
	Items    []OrderItem    `json:"items"`
}

// OrderShipping is the address snapshot taken when the order was placed
type OrderShipping struct {
	Name     string  `json:"name"`
	Street1  string  `json:"street1"`
	Street2  *string `json:"street2,omitempty"`
	City     string  `json:"city"`
	Province *string `json:"province,omitempty"`
	Country  string  `json:"country"`
	Zip      string  `json:"zip"`
	Phone    *string `json:"phone,omitempty"`
}

type OrderAmount struct {
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Total    *int64 `json:"total,omitempty"`
}

type OrderTracking struct {
	Service string `json:"service"`
	Number  string `json:"number"`
	URL     string `json:"url"`
}

type OrderItem struct {
	ID               string  `json:"id"`
	Description      *string `json:"description,omitempty"`
	Amount           int64   `json:"amount"`
	Quantity         int     `json:"quantity"`
	ProductVariantID *string `json:"productVariantID,omitempty"`
}

// Address is a saved shipping destination
type Address struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Street1  string  `json:"street1"`
	Street2  *string `json:"street2,omitempty"`
	City     string  `json:"city"`
	Province *string `json:"province,omitempty"`
	Country  string  `json:"country"`
	Zip      string  `json:"zip"`
	Phone    *string `json:"phone,omitempty"`
}

// Card is a stored payment method
type Card struct {
	ID         string         `json:"id"`
	Brand      string         `json:"brand"`
	Last4      string         `json:"last4"`
	Expiration CardExpiration `json:"expiration"`
}

type CardExpiration struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CardCollection holds the hosted URL where a card can be entered
type CardCollection struct {
	URL string `json:"url"`
}

// Subscription is a recurring order schedule
type Subscription struct {
	ID               string                `json:"id"`
	ProductVariantID string                `json:"productVariantID"`
	Quantity         int                   `json:"quantity"`
	AddressID        string                `json:"addressID"`
	CardID           string                `json:"cardID"`
	Schedule         *SubscriptionSchedule `json:"schedule,omitempty"`
	Next             *string               `json:"next,omitempty"`
	Created          *string               `json:"created,omitempty"`
}

type SubscriptionSchedule struct {
	Type     ScheduleType `json:"type"`
	Interval *int         `json:"interval,omitempty"`
}

// AccessToken is a personal access token. The value is only returned on creation.
type AccessToken struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// Profile wraps the account holder
type Profile struct {
	User User `json:"user"`
}

type User struct {
	ID               string  `json:"id"`
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Fingerprint      *string `json:"fingerprint,omitempty"`
	StripeCustomerID string  `json:"stripeCustomerID"`
}

// AppData is the aggregated bootstrap view returned by /view/init
type AppData struct {
	Profile       Profile        `json:"profile"`
	Cart          Cart           `json:"cart"`
	Orders        []Order        `json:"orders"`
	Subscriptions []Subscription `json:"subscriptions"`
	Products      []Product      `json:"products"`
	Addresses     []Address      `json:"addresses"`
	Cards         []Card         `json:"cards"`
	Region        string         `json:"region"`
}

// GatewayKey is an API key a gateway client authenticates with
type GatewayKey struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Invocation is an audit record of one registry call. It never carries
// arguments or upstream payloads.
type Invocation struct {
	ID           uuid.UUID
	Operation    string
	Kind         OperationKind
	IsError      bool
	ErrorKind    string
	DurationMs   int64
	GatewayKeyID *uuid.UUID
	CreatedAt    time.Time
}
