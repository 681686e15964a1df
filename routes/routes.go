package routes

import (
	"outfitorbit/addresses"
	"outfitorbit/cart"
	"outfitorbit/checkout"
	"outfitorbit/middleware"
	"outfitorbit/orders"
	"outfitorbit/pay"
	"outfitorbit/products"
	"outfitorbit/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddProductRoutes(router *httprouter.Router, s *products.ProductService) {
	router.GET("/api/products/:category", middleware.OptionalAuth(s.ListByCategory))
	router.GET("/api/product/:productid", middleware.OptionalAuth(s.GetProduct))
}

func AddCartRoutes(router *httprouter.Router, s *cart.CartService, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/v1/cart", middleware.Authenticate(s.GetCart))
	router.POST("/api/v1/cart", middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(s.AddToCart))
	router.PUT("/api/v1/cart/:itemid", middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(s.UpdateQuantity))
	router.DELETE("/api/v1/cart/:itemid", middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(s.RemoveItem))
}

func AddAddressRoutes(router *httprouter.Router, s *addresses.AddressService) {
	router.GET("/api/v1/addresses", middleware.Authenticate(s.ListAddresses))
	router.GET("/api/v1/addresses/:id", middleware.Authenticate(s.GetAddress))
}

func AddCheckoutRoutes(router *httprouter.Router, s *checkout.CheckoutService, rateLimiter *ratelim.RateLimiter) {
	mutate := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/v1/checkout", middleware.Authenticate(s.GetCheckout))
	router.POST("/api/v1/checkout/address", mutate(s.SelectAddress))
	router.POST("/api/v1/checkout/delivery", mutate(s.SelectDelivery))
	router.POST("/api/v1/checkout/payment", mutate(s.SelectPayment))
	router.POST("/api/v1/checkout/continue", mutate(s.Continue))
	router.POST("/api/v1/checkout/back", mutate(s.Back))
	router.POST("/api/v1/checkout/restart", mutate(s.Restart))
	router.POST("/api/v1/checkout/place-order", mutate(s.PlaceOrder))
}

func AddOrderRoutes(router *httprouter.Router, s *orders.OrderService) {
	router.GET("/api/v1/orders", middleware.Authenticate(s.ListOrders))
	router.GET("/api/v1/orders/:orderid", middleware.Authenticate(s.GetOrder))
	router.GET("/api/v1/orders/:orderid/invoice", middleware.Authenticate(s.Invoice))
}

// AddPayRoutes wires PaymentService handlers to the router
func AddPayRoutes(router *httprouter.Router, s *pay.PaymentService, idem pay.IdempotencyStore, rateLimiter *ratelim.RateLimiter) {
	mutate := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/v1/pay/:orderid/options", mutate(s.Options))
	router.POST("/api/v1/pay/:orderid/verify", mutate(pay.Idempotent(idem, s.VerifyPayment)))
	router.POST("/api/v1/pay/:orderid/failure", mutate(s.PaymentFailed))
	router.GET("/api/v1/pay/:orderid/upi-qr", middleware.Authenticate(s.UPIQR))
	router.GET("/api/v1/pay/:orderid/transactions", middleware.Authenticate(s.ListTransactions))
}
