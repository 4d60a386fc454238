package handlers

import (
	"agrimarket/internal/services"
	"agrimarket/internal/store"
)

// Stores bundles the four storage ports; main picks the backend.
type Stores struct {
	Listings store.ListingStore
	Products store.ProductStore
	Deals    store.DealStore
	Users    store.UserStore
}

type Deps struct {
	MarketHandler *MarketHandler
	OrderHandler  *OrderHandler
	AdminHandler  *AdminHandler
	PriceHandler  *PriceHandler
	AuthHandler   *AuthHandler
}

func NewDeps(st Stores, auth *services.AuthService, prices *services.PriceService) *Deps {
	marketSvc := services.NewMarketService(st.Listings, st.Deals)
	orderSvc := services.NewOrderService(st.Listings, st.Products)
	dealsSvc := services.NewDealsService(st.Deals, st.Listings)

	return &Deps{
		MarketHandler: &MarketHandler{Market: marketSvc, Products: st.Products, Auth: auth},
		OrderHandler:  &OrderHandler{Order: orderSvc, Market: marketSvc},
		AdminHandler:  &AdminHandler{Market: marketSvc, Deals: dealsSvc, Listings: st.Listings, Products: st.Products, Prices: prices},
		PriceHandler:  &PriceHandler{Prices: prices},
		AuthHandler:   &AuthHandler{Auth: auth},
	}
}
