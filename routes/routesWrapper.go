package routes

import (
	"outfitorbit/addresses"
	"outfitorbit/cart"
	"outfitorbit/checkout"
	"outfitorbit/orders"
	"outfitorbit/pay"
	"outfitorbit/products"
	"outfitorbit/ratelim"

	"github.com/julienschmidt/httprouter"
)

// Services is everything the router dispatches to.
type Services struct {
	Products    *products.ProductService
	Cart        *cart.CartService
	Addresses   *addresses.AddressService
	Checkout    *checkout.CheckoutService
	Orders      *orders.OrderService
	Pay         *pay.PaymentService
	Idempotency pay.IdempotencyStore
}

func RoutesWrapper(router *httprouter.Router, s Services, rateLimiter *ratelim.RateLimiter) {
	AddProductRoutes(router, s.Products)
	AddCartRoutes(router, s.Cart, rateLimiter)
	AddAddressRoutes(router, s.Addresses)
	AddCheckoutRoutes(router, s.Checkout, rateLimiter)
	AddOrderRoutes(router, s.Orders)
	AddPayRoutes(router, s.Pay, s.Idempotency, rateLimiter)
}
