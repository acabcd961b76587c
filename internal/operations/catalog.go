package operations

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/format"
	"github.com/jafarshop/shopgateway/internal/service"
)

// typed adapts a handler over a decoded input struct
func typed[T any](fn func(ctx context.Context, in T) (string, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var in T
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}
		return fn(ctx, in)
	}
}

// noArgs adapts a handler that takes no input
func noArgs(fn func(ctx context.Context) (string, error)) Handler {
	return func(ctx context.Context, _ json.RawMessage) (string, error) {
		return fn(ctx)
	}
}

type searchInput struct {
	Query string `json:"query"`
}

type productIDInput struct {
	ProductID string `json:"productId"`
}

type addressIDInput struct {
	AddressID string `json:"addressId"`
}

type cardIDInput struct {
	CardID string `json:"cardId"`
}

type subscriptionIDInput struct {
	SubscriptionID string `json:"subscriptionId"`
}

type tokenIDInput struct {
	TokenID string `json:"tokenId"`
}

// NewCatalog builds the registry with every Terminal.shop tool, resource and prompt
func NewCatalog(svc *service.Services, logger *zap.Logger, opts ...Option) (*Registry, error) {
	r := NewRegistry(logger, opts...)

	for _, op := range tools(svc) {
		if err := r.Register(op); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", op.Name, err)
		}
	}
	for _, res := range resources(svc) {
		if err := r.RegisterResource(res); err != nil {
			return nil, fmt.Errorf("failed to register resource %s: %w", res.Name, err)
		}
	}
	for _, p := range prompts() {
		if err := r.RegisterPrompt(p); err != nil {
			return nil, fmt.Errorf("failed to register prompt %s: %w", p.Name, err)
		}
	}

	logger.Info("Operation catalog ready",
		zap.Int("operations", len(r.operations)),
		zap.Int("resources", len(r.resources)),
		zap.Int("prompts", len(r.prompts)),
	)
	return r, nil
}

const idSchema = `{"type":"string","minLength":1}`

func objectSchema(properties string, required ...string) string {
	req, _ := json.Marshal(required)
	if required == nil {
		req = []byte("[]")
	}
	return fmt.Sprintf(`{"type":"object","properties":{%s},"required":%s,"additionalProperties":false}`, properties, req)
}

func tools(svc *service.Services) []Operation {
	return []Operation{
		// Queries
		{
			Name:        "search-products",
			Description: "Search products by name or description. Omit query to list everything.",
			Kind:        domain.OperationQuery,
			Action:      "searching products",
			Schema:      objectSchema(`"query":{"type":"string"}`),
			Handler: typed(func(ctx context.Context, in searchInput) (string, error) {
				products, err := svc.Catalog.SearchProducts(ctx, in.Query)
				if err != nil {
					return "", err
				}
				return format.SearchResults(in.Query, products)
			}),
		},
		{
			Name:        "get-product-details",
			Description: "Get details for a product including variants, subscription policy and tags.",
			Kind:        domain.OperationQuery,
			Action:      "fetching product details",
			Schema:      objectSchema(`"productId":`+idSchema, "productId"),
			Handler: typed(func(ctx context.Context, in productIDInput) (string, error) {
				product, err := svc.Catalog.GetProduct(ctx, in.ProductID)
				if err != nil {
					return "", err
				}
				return format.ProductDetails(*product)
			}),
		},
		{
			Name:        "get-app-data",
			Description: "Get an overview of the account: profile, cart, orders, subscriptions and products.",
			Kind:        domain.OperationQuery,
			Action:      "getting app data",
			Handler: noArgs(func(ctx context.Context) (string, error) {
				data, err := svc.Account.GetAppData(ctx)
				if err != nil {
					return "", err
				}
				return format.AppData(*data)
			}),
		},

		// Cart and orders
		{
			Name:        "add-to-cart",
			Description: "Set the quantity of a product variant in the cart.",
			Kind:        domain.OperationCommand,
			Action:      "adding item to cart",
			Schema: objectSchema(
				`"productVariantID":`+idSchema+`,"quantity":{"type":"integer","minimum":1}`,
				"productVariantID", "quantity",
			),
			Handler: typed(func(ctx context.Context, in service.AddCartItemInput) (string, error) {
				cart, err := svc.Cart.AddItem(ctx, in)
				if err != nil {
					return "", err
				}
				return format.CartUpdated(*cart)
			}),
		},
		{
			Name:        "set-cart-address",
			Description: "Set the shipping address for the cart.",
			Kind:        domain.OperationCommand,
			Action:      "setting cart address",
			Schema:      objectSchema(`"addressID":`+idSchema, "addressID"),
			Handler: typed(func(ctx context.Context, in service.SetCartAddressInput) (string, error) {
				if err := svc.Cart.SetAddress(ctx, in); err != nil {
					return "", err
				}
				return "Successfully set shipping address for your cart.", nil
			}),
		},
		{
			Name:        "set-cart-card",
			Description: "Set the payment card for the cart.",
			Kind:        domain.OperationCommand,
			Action:      "setting cart payment method",
			Schema:      objectSchema(`"cardID":`+idSchema, "cardID"),
			Handler: typed(func(ctx context.Context, in service.SetCartCardInput) (string, error) {
				if err := svc.Cart.SetCard(ctx, in); err != nil {
					return "", err
				}
				return "Successfully set payment method for your cart.", nil
			}),
		},
		{
			Name:        "clear-cart",
			Description: "Remove every item from the cart.",
			Kind:        domain.OperationCommand,
			Action:      "clearing cart",
			Handler: noArgs(func(ctx context.Context) (string, error) {
				if err := svc.Cart.Clear(ctx); err != nil {
					return "", err
				}
				return "Your cart has been cleared successfully.", nil
			}),
		},
		{
			Name:        "checkout",
			Description: "Convert the cart into an order using its address and card.",
			Kind:        domain.OperationCommand,
			Action:      "during checkout",
			Handler: noArgs(func(ctx context.Context) (string, error) {
				order, err := svc.Cart.Convert(ctx)
				if err != nil {
					return "", err
				}
				return format.Checkout(*order)
			}),
		},
		{
			Name:        "create-order",
			Description: "Place an order directly without using the cart.",
			Kind:        domain.OperationCommand,
			Action:      "creating order",
			Schema: objectSchema(
				`"variants":{"type":"object","minProperties":1,"propertyNames":{"minLength":1},"additionalProperties":{"type":"integer","minimum":1}},`+
					`"addressID":`+idSchema+`,"cardID":`+idSchema,
				"variants", "addressID", "cardID",
			),
			Handler: typed(func(ctx context.Context, in service.CreateOrderInput) (string, error) {
				orderID, err := svc.Cart.CreateOrder(ctx, in)
				if err != nil {
					return "", err
				}
				return format.OrderCreated(orderID)
			}),
		},

		// Profile
		{
			Name:        "update-profile",
			Description: "Update the account name and email.",
			Kind:        domain.OperationCommand,
			Action:      "updating profile",
			Schema:      objectSchema(`"name":{"type":"string","minLength":1},"email":{"type":"string","format":"email"}`),
			Handler: typed(func(ctx context.Context, in service.UpdateProfileInput) (string, error) {
				profile, err := svc.Account.UpdateProfile(ctx, in)
				if err != nil {
					return "", err
				}
				return format.ProfileUpdated(*profile)
			}),
		},

		// Addresses
		{
			Name:        "create-address",
			Description: "Save a new shipping address.",
			Kind:        domain.OperationCommand,
			Action:      "creating address",
			Schema: objectSchema(
				`"name":`+idSchema+`,"street1":`+idSchema+`,"street2":{"type":"string"},"city":`+idSchema+`,`+
					`"province":{"type":"string"},"country":{"type":"string","pattern":"^[A-Za-z]{2}$"},`+
					`"zip":`+idSchema+`,"phone":{"type":"string"}`,
				"name", "street1", "city", "country", "zip",
			),
			Handler: typed(func(ctx context.Context, in service.CreateAddressInput) (string, error) {
				addressID, err := svc.Account.CreateAddress(ctx, in)
				if err != nil {
					return "", err
				}
				return format.Created("Address", addressID)
			}),
		},
		{
			Name:        "delete-address",
			Description: "Delete a saved shipping address.",
			Kind:        domain.OperationCommand,
			Action:      "deleting address",
			Schema:      objectSchema(`"addressId":`+idSchema, "addressId"),
			Handler: typed(func(ctx context.Context, in addressIDInput) (string, error) {
				if err := svc.Account.DeleteAddress(ctx, in.AddressID); err != nil {
					return "", err
				}
				return "Address deleted successfully", nil
			}),
		},

		// Cards
		{
			Name:        "collect-card",
			Description: "Get a secure URL where a new payment card can be entered.",
			Kind:        domain.OperationCommand,
			Action:      "generating card collection URL",
			Handler: noArgs(func(ctx context.Context) (string, error) {
				collection, err := svc.Account.CollectCard(ctx)
				if err != nil {
					return "", err
				}
				return format.CardCollection(*collection)
			}),
		},
		{
			Name:        "create-card",
			Description: "Store a payment card from a payment processor token.",
			Kind:        domain.OperationCommand,
			Action:      "creating card",
			Schema:      objectSchema(`"token":`+idSchema, "token"),
			Handler: typed(func(ctx context.Context, in service.CreateCardInput) (string, error) {
				cardID, err := svc.Account.CreateCard(ctx, in)
				if err != nil {
					return "", err
				}
				return format.Created("Card", cardID)
			}),
		},
		{
			Name:        "delete-card",
			Description: "Delete a stored payment card.",
			Kind:        domain.OperationCommand,
			Action:      "deleting card",
			Schema:      objectSchema(`"cardId":`+idSchema, "cardId"),
			Handler: typed(func(ctx context.Context, in cardIDInput) (string, error) {
				if err := svc.Account.DeleteCard(ctx, in.CardID); err != nil {
					return "", err
				}
				return "Card deleted successfully", nil
			}),
		},

		// Subscriptions
		{
			Name:        "create-subscription",
			Description: "Subscribe to a product variant on a fixed or weekly schedule. Weekly schedules need an interval.",
			Kind:        domain.OperationCommand,
			Action:      "creating subscription",
			Schema: objectSchema(
				`"productVariantID":`+idSchema+`,"quantity":{"type":"integer","minimum":1},`+
					`"addressID":`+idSchema+`,"cardID":`+idSchema+`,`+
					`"schedule":{"type":"object","properties":{"type":{"enum":["fixed","weekly"]},"interval":{"type":"integer","minimum":1}},"required":["type"],"additionalProperties":false}`,
				"productVariantID", "quantity", "addressID", "cardID", "schedule",
			),
			Handler: typed(func(ctx context.Context, in service.CreateSubscriptionInput) (string, error) {
				if err := svc.Account.CreateSubscription(ctx, in); err != nil {
					return "", err
				}
				return "Subscription created successfully!", nil
			}),
		},
		{
			Name:        "cancel-subscription",
			Description: "Cancel a subscription.",
			Kind:        domain.OperationCommand,
			Action:      "canceling subscription",
			Schema:      objectSchema(`"subscriptionId":`+idSchema, "subscriptionId"),
			Handler: typed(func(ctx context.Context, in subscriptionIDInput) (string, error) {
				if err := svc.Account.CancelSubscription(ctx, in.SubscriptionID); err != nil {
					return "", err
				}
				return "Subscription canceled successfully", nil
			}),
		},

		// Tokens
		{
			Name:        "create-token",
			Description: "Create a personal access token. The value is shown only once.",
			Kind:        domain.OperationCommand,
			Action:      "creating token",
			Handler: noArgs(func(ctx context.Context) (string, error) {
				token, err := svc.Account.CreateToken(ctx)
				if err != nil {
					return "", err
				}
				return format.TokenCreated(*token)
			}),
		},
		{
			Name:        "delete-token",
			Description: "Delete a personal access token.",
			Kind:        domain.OperationCommand,
			Action:      "deleting token",
			Schema:      objectSchema(`"tokenId":`+idSchema, "tokenId"),
			Handler: typed(func(ctx context.Context, in tokenIDInput) (string, error) {
				if err := svc.Account.DeleteToken(ctx, in.TokenID); err != nil {
					return "", err
				}
				return "Token deleted successfully", nil
			}),
		},
	}
}

func resources(svc *service.Services) []Resource {
	return []Resource{
		{
			Name:        "products",
			URITemplate: "terminal://products",
			Description: "All products available in the shop",
			Action:      "fetching products",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				products, err := svc.Catalog.ListProducts(ctx)
				if err != nil {
					return "", err
				}
				return format.Products(products)
			},
		},
		{
			Name:        "product",
			URITemplate: "terminal://product/{id}",
			Description: "A single product by ID",
			Action:      "fetching product",
			Read: func(ctx context.Context, params map[string]string) (string, error) {
				product, err := svc.Catalog.GetProduct(ctx, params["id"])
				if err != nil {
					return "", err
				}
				return format.ProductDetails(*product)
			},
		},
		{
			Name:        "order-history",
			URITemplate: "terminal://orders",
			Description: "Orders placed by the account",
			Action:      "fetching order history",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				orders, err := svc.Cart.ListOrders(ctx)
				if err != nil {
					return "", err
				}
				return format.Orders(orders)
			},
		},
		{
			Name:        "profile",
			URITemplate: "terminal://profile",
			Description: "The account profile",
			Action:      "fetching profile",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				profile, err := svc.Account.GetProfile(ctx)
				if err != nil {
					return "", err
				}
				return format.Profile(*profile)
			},
		},
		{
			Name:        "addresses",
			URITemplate: "terminal://addresses",
			Description: "Saved shipping addresses",
			Action:      "fetching addresses",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				addresses, err := svc.Account.ListAddresses(ctx)
				if err != nil {
					return "", err
				}
				return format.Addresses(addresses)
			},
		},
		{
			Name:        "cards",
			URITemplate: "terminal://cards",
			Description: "Stored payment methods",
			Action:      "fetching cards",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				cards, err := svc.Account.ListCards(ctx)
				if err != nil {
					return "", err
				}
				return format.Cards(cards)
			},
		},
		{
			Name:        "cart",
			URITemplate: "terminal://cart",
			Description: "The current shopping cart",
			Action:      "fetching cart",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				cart, err := svc.Cart.GetCart(ctx)
				if err != nil {
					return "", err
				}
				return format.Cart(*cart)
			},
		},
		{
			Name:        "subscriptions",
			URITemplate: "terminal://subscriptions",
			Description: "Active subscriptions",
			Action:      "fetching subscriptions",
			Read: func(ctx context.Context, _ map[string]string) (string, error) {
				subscriptions, err := svc.Account.ListSubscriptions(ctx)
				if err != nil {
					return "", err
				}
				return format.Subscriptions(subscriptions)
			},
		},
	}
}

func prompts() []Prompt {
	return []Prompt{
		{
			Name:        "browse-products",
			Description: "Browse the shop, optionally around a search term",
			Arguments:   []PromptArgument{{Name: "searchTerm", Description: "What to look for"}},
			Render: func(args map[string]string) string {
				if term := args["searchTerm"]; term != "" {
					return fmt.Sprintf("I'm interested in browsing Terminal.shop products related to %q. "+
						"Could you show me what's available and help me find something I might like?", term)
				}
				return "I'd like to browse the products available from Terminal.shop. " +
					"Could you show me what coffee options they have and help me find something I might like?"
			},
		},
		{
			Name:        "manage-cart",
			Description: "Review the cart and check out",
			Render: func(map[string]string) string {
				return "I want to manage my shopping cart at Terminal.shop. Can you show me what's in my cart, " +
					"help me add or remove items, and guide me through the checkout process?"
			},
		},
		{
			Name:        "place-order",
			Description: "Place an order, optionally for a named product",
			Arguments:   []PromptArgument{{Name: "productName", Description: "Product to order"}},
			Render: func(args map[string]string) string {
				if name := args["productName"]; name != "" {
					return fmt.Sprintf("I'd like to order some %s from Terminal.shop. Can you help me place this order?", name)
				}
				return "I want to place an order on Terminal.shop. Can you help me select products and complete my purchase?"
			},
		},
		{
			Name:        "manage-subscription",
			Description: "Review and change subscriptions",
			Render: func(map[string]string) string {
				return "I'd like to view and manage my coffee subscriptions from Terminal.shop. " +
					"Can you show me my active subscriptions and the options available?"
			},
		},
		{
			Name:        "manage-profile",
			Description: "Manage profile, addresses and payment methods",
			Render: func(map[string]string) string {
				return "I want to manage my Terminal.shop profile, including my shipping addresses and payment methods. " +
					"Can you help me with that?"
			},
		},
	}
}
