package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/admin"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// AdminHandler serves the back-office endpoints. Users, orders and foods go
// through the admin cache; the rest hits the repositories directly.
type AdminHandler struct {
	admin     *admin.Service
	campaigns interfaces.CampaignRepository
	orders    interfaces.OrderRepository
	news      interfaces.NewsRepository
	contact   interfaces.ContactRepository
	logger    logger.Logger
}

func NewAdminHandler(adminSvc *admin.Service, campaigns interfaces.CampaignRepository, orders interfaces.OrderRepository, news interfaces.NewsRepository, contact interfaces.ContactRepository, logger logger.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     adminSvc,
		campaigns: campaigns,
		orders:    orders,
		news:      news,
		contact:   contact,
		logger:    logger,
	}
}

// Refresh reloads the cached datasets; force=true bypasses the TTL.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := h.admin.Load(r.Context(), force); err != nil {
		h.logger.Error("admin_refresh_failed", "Failed to refresh admin cache", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to refresh data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"refreshed": true})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Load(r.Context(), false); err != nil {
		h.logger.Error("admin_load_failed", "Failed to load admin data", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to load data")
		return
	}
	respondJSON(w, http.StatusOK, h.admin.Stats())
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Load(r.Context(), false); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	users := h.admin.Users()
	dtos := make([]userDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	respondJSON(w, http.StatusOK, dtos)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.admin.SetUserActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type setRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.admin.SetUserRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Load(r.Context(), false); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	orders := h.admin.Orders()
	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

type updateStatusRequest struct {
	Status    domain.Status `json:"status"`
	ChangedBy string        `json:"changed_by"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChangedBy == "" {
		req.ChangedBy = "admin"
	}

	if err := h.admin.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.ChangedBy); err != nil {
		if !domain.ValidStatus(req.Status) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("status_update_failed", "Failed to update order status", "", nil, err)
		respondError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.GetStatusHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load status history")
		return
	}
	dtos := make([]statusLogDTO, 0, len(history))
	for _, entry := range history {
		dtos = append(dtos, toStatusLogDTO(entry))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Load(r.Context(), false); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load foods")
		return
	}
	foods := h.admin.Foods()
	dtos := make([]menuItemDTO, 0, len(foods))
	for _, f := range foods {
		dtos = append(dtos, toMenuItemDTO(f))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var req menuItemDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.toDomain("")
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := h.admin.CreateFood(r.Context(), item); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toMenuItemDTO(item))
}

func (h *AdminHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	var req menuItemDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.toDomain(chi.URLParam(r, "id"))
	if err := h.admin.UpdateFood(r.Context(), item); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemDTO(item))
}

func (h *AdminHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteFood(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete food")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	all, err := h.campaigns.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load campaigns")
		return
	}
	dtos := make([]campaignDTO, 0, len(all))
	for _, c := range all {
		dtos = append(dtos, toCampaignDTO(c))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := req.toDomain("")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	if err := h.admin.CreateCampaign(r.Context(), campaign); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toCampaignDTO(campaign))
}

func (h *AdminHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := req.toDomain(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.admin.UpdateCampaign(r.Context(), campaign); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toCampaignDTO(campaign))
}

func (h *AdminHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	all, err := h.news.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load news")
		return
	}
	dtos := make([]newsDTO, 0, len(all))
	for _, n := range all {
		dtos = append(dtos, toNewsDTO(n))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req newsDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.toDomain("")
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.news.Create(r.Context(), item); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create news")
		return
	}
	respondJSON(w, http.StatusCreated, toNewsDTO(item))
}

func (h *AdminHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	var req newsDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.toDomain(chi.URLParam(r, "id"))
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.news.Update(r.Context(), item); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update news")
		return
	}
	respondJSON(w, http.StatusOK, toNewsDTO(item))
}

func (h *AdminHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := h.news.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete news")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) UpdateContactInfo(w http.ResponseWriter, r *http.Request) {
	var req contactInfoDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.contact.Put(r.Context(), req.toDomain()); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update contact info")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.ListMessages(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	dtos := make([]contactMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		dtos = append(dtos, toContactMessageDTO(m))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.MarkMessageRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to mark message read")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
