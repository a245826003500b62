package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/app/checkout"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// CartHandler serves the cart, coupon and checkout endpoints. The cart
// session rides on the X-Session-ID header.
type CartHandler struct {
	carts    *cart.Service
	checkout *checkout.Service
	orders   interfaces.OrderRepository
	logger   logger.Logger
}

func NewCartHandler(carts *cart.Service, checkoutSvc *checkout.Service, orders interfaces.OrderRepository, logger logger.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkoutSvc,
		orders:   orders,
		logger:   logger,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), sessionID(w, r))
	if err != nil {
		h.logger.Error("cart_load_failed", "Failed to load cart", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type cartLineRequest struct {
	ItemID   string        `json:"item_id"`
	Volume   domain.Volume `json:"volume"`
	Quantity int           `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.carts.AddItem(r.Context(), sessionID(w, r), req.ItemID, req.Volume, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemUnavailable) {
			respondError(w, http.StatusConflict, "This item is not available right now")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), sessionID(w, r), req.ItemID, req.Volume, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "Cart line not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	volume := domain.Volume(r.URL.Query().Get("volume"))

	c, err := h.carts.RemoveLine(r.Context(), sessionID(w, r), itemID, volume)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "Cart line not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), sessionID(w, r)); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type applyCouponResponse struct {
	Accepted bool         `json:"accepted"`
	Reason   string       `json:"reason,omitempty"`
	Message  string       `json:"message,omitempty"`
	Cart     *domain.Cart `json:"cart"`
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, res, err := h.carts.ApplyCoupon(r.Context(), sessionID(w, r), r.Header.Get(userHeader), req.Code)
	if err != nil {
		h.logger.Error("coupon_apply_failed", "Coupon evaluation failed", "", map[string]interface{}{
			"code": req.Code,
		}, err)
		respondError(w, http.StatusInternalServerError, "Failed to check coupon")
		return
	}

	resp := applyCouponResponse{Accepted: res.Accepted, Cart: c}
	if !res.Accepted {
		resp.Reason = string(res.Reason)
		resp.Message = rejectMessage(res.Reason, res.Shortfall, requestLanguage(r))
		respondJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveCoupon(r.Context(), sessionID(w, r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to remove coupon")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type checkoutRequest struct {
	ServiceType   domain.ServiceType      `json:"service_type"`
	PaymentMethod domain.PaymentMethod    `json:"payment_method"`
	Address       *domain.DeliveryAddress `json:"address,omitempty"`
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), checkout.Request{
		SessionID:     sessionID(w, r),
		UserID:        r.Header.Get(userHeader),
		ServiceType:   req.ServiceType,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "Cart is empty")
		case errors.Is(err, domain.ErrAddressRequired), errors.Is(err, domain.ErrAddressIncomplete):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("checkout_failed", "Checkout failed", "", nil, err)
			respondError(w, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *CartHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *CartHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Sign in to see your orders")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("order_list_failed", "Failed to list orders", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// rejectMessage renders the customer-facing explanation for a coupon
// rejection in the requested language.
func rejectMessage(reason interfaces.RejectReason, shortfall float64, lang domain.Language) string {
	sv := lang == domain.LanguageSwedish

	switch reason {
	case interfaces.ReasonNotStarted:
		if sv {
			return "Kampanjen har inte börjat än"
		}
		return "This campaign has not started yet"
	case interfaces.ReasonExpired:
		if sv {
			return "Rabattkoden har gått ut"
		}
		return "This coupon has expired"
	case interfaces.ReasonOutsideHours:
		if sv {
			return "Rabattkoden gäller inte just nu"
		}
		return "This coupon is not valid at this time"
	case interfaces.ReasonMinimumOrder:
		amount := strconv.FormatFloat(shortfall, 'f', -1, 64)
		if sv {
			return fmt.Sprintf("Lägg till varor för %s kr till för att använda rabattkoden", amount)
		}
		return fmt.Sprintf("Add %s kr more to use this coupon", amount)
	case interfaces.ReasonNotEligible:
		if sv {
			return "Rabattkoden gäller inte för varorna i din varukorg"
		}
		return "This coupon does not apply to the items in your cart"
	case interfaces.ReasonUsageLimit:
		if sv {
			return "Du har redan använt den här rabattkoden"
		}
		return "You have already used this coupon"
	default:
		if sv {
			return "Ogiltig rabattkod"
		}
		return "Invalid coupon code"
	}
}
