package terminal

import (
	"context"
	"net/url"
)

// Upstream paths, relative to the base URL
const (
	PathProducts      = "/product"
	PathCart          = "/cart"
	PathCartItem      = "/cart/item"
	PathCartAddress   = "/cart/address"
	PathCartCard      = "/cart/card"
	PathCartConvert   = "/cart/convert"
	PathOrders        = "/order"
	PathProfile       = "/profile"
	PathAddresses     = "/address"
	PathCards         = "/card"
	PathCardCollect   = "/card/collect"
	PathSubscriptions = "/subscription"
	PathTokens        = "/token"
	PathAppInit       = "/view/init"
)

// IdempotencyHeader is forwarded upstream when the caller supplied a key
const IdempotencyHeader = "Idempotency-Key"

// ItemPath addresses a single record inside a collection
func ItemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey marks mutating calls made with ctx as safe to retry.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKeyFrom returns the key set by WithIdempotencyKey, if any.
func IdempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyCtx{}).(string)
	return key
}
