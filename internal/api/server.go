package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	CatalogHandler  *handler.CatalogHandler
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	ProfileHandler  *handler.ProfileHandler
}

func NewServer(
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	profileHandler *handler.ProfileHandler,
) *Server {
	return &Server{
		CatalogHandler:  catalogHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		ProfileHandler:  profileHandler,
	}
}
