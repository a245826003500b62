package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// PublicHandler serves the customer-facing read endpoints and the contact
// form.
type PublicHandler struct {
	menu      interfaces.MenuRepository
	campaigns interfaces.CampaignRepository
	news      interfaces.NewsRepository
	contact   interfaces.ContactRepository
	logger    logger.Logger
}

func NewPublicHandler(menu interfaces.MenuRepository, campaigns interfaces.CampaignRepository, news interfaces.NewsRepository, contact interfaces.ContactRepository, logger logger.Logger) *PublicHandler {
	return &PublicHandler{
		menu:      menu,
		campaigns: campaigns,
		news:      news,
		contact:   contact,
		logger:    logger,
	}
}

func (h *PublicHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAvailable(r.Context())
	if err != nil {
		h.logger.Error("menu_list_failed", "Failed to list menu", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load menu")
		return
	}

	dtos := make([]menuItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toMenuItemDTO(item))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *PublicHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.menu.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemDTO(item))
}

// ListCampaigns returns the currently running campaigns for the banner
// carousel. Hidden coupon codes are stripped.
func (h *PublicHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	all, err := h.campaigns.ListAll(r.Context())
	if err != nil {
		h.logger.Error("campaign_list_failed", "Failed to list campaigns", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load campaigns")
		return
	}

	now := time.Now()
	dtos := make([]campaignDTO, 0, len(all))
	for _, c := range all {
		if c.NotYetActive(now) || c.Expired(now) {
			continue
		}
		dtos = append(dtos, toPublicCampaignDTO(c))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *PublicHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	published, err := h.news.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("news_list_failed", "Failed to list news", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load news")
		return
	}

	dtos := make([]newsDTO, 0, len(published))
	for _, n := range published {
		dtos = append(dtos, toNewsDTO(n))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *PublicHandler) GetContactInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.contact.Get(r.Context())
	if err != nil {
		h.logger.Error("contact_info_failed", "Failed to load contact info", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load contact info")
		return
	}
	respondJSON(w, http.StatusOK, toContactInfoDTO(info))
}

type contactMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *PublicHandler) CreateContactMessage(w http.ResponseWriter, r *http.Request) {
	var req contactMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg := &domain.ContactMessage{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := msg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contact.CreateMessage(r.Context(), msg); err != nil {
		h.logger.Error("contact_message_failed", "Failed to store contact message", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": msg.ID})
}
