package http

import (
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
)

const dateLayout = "2006-01-02"

type menuItemDTO struct {
	ID            string               `json:"id"`
	Name          domain.LocalizedText `json:"name"`
	Description   domain.LocalizedText `json:"description"`
	Price         domain.PriceSpec     `json:"price"`
	PriceDisplay  string               `json:"price_display"`
	Category      string               `json:"category"`
	SubCategory   string               `json:"sub_category,omitempty"`
	Image         string               `json:"image,omitempty"`
	Available     bool                 `json:"available"`
	Discount      *domain.ItemDiscount `json:"discount,omitempty"`
	OriginalPrice float64              `json:"original_price,omitempty"`
}

func toMenuItemDTO(item *domain.MenuItem) menuItemDTO {
	return menuItemDTO{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		PriceDisplay:  item.Price.Display(),
		Category:      item.Category,
		SubCategory:   item.SubCategory,
		Image:         item.Image,
		Available:     item.Available,
		Discount:      item.Discount,
		OriginalPrice: item.OriginalPrice,
	}
}

func (d menuItemDTO) toDomain(id string) *domain.MenuItem {
	if id == "" {
		id = d.ID
	}
	return &domain.MenuItem{
		ID:            id,
		Name:          d.Name,
		Description:   d.Description,
		Price:         d.Price,
		Category:      d.Category,
		SubCategory:   d.SubCategory,
		Image:         d.Image,
		Available:     d.Available,
		Discount:      d.Discount,
		OriginalPrice: d.OriginalPrice,
	}
}

type campaignDTO struct {
	ID           string               `json:"id"`
	Title        domain.LocalizedText `json:"title"`
	Subtitle     domain.LocalizedText `json:"subtitle"`
	Text         domain.LocalizedText `json:"text"`
	Image        string               `json:"image,omitempty"`
	TextPosition string               `json:"text_position,omitempty"`
	IsMain       bool                 `json:"is_main"`

	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	CouponCode         string              `json:"coupon_code,omitempty"`
	HideCouponCode     bool                `json:"hide_coupon_code,omitempty"`
	DiscountType       domain.DiscountType `json:"discount_type,omitempty"`
	DiscountPercentage float64             `json:"discount_percentage,omitempty"`
	DiscountFixed      float64             `json:"discount_fixed,omitempty"`
	MaxUsagesPerUser   int                 `json:"max_usages_per_user,omitempty"`
	MinimumOrderAmount float64             `json:"minimum_order_amount,omitempty"`
	EligibleDishes     []string            `json:"eligible_dishes,omitempty"`

	HasTimeRestriction bool   `json:"has_time_restriction"`
	StartTime          string `json:"start_time,omitempty"`
	EndTime            string `json:"end_time,omitempty"`
	DaysOfWeek         []int  `json:"days_of_week,omitempty"`

	AutoApplyOnMenu bool `json:"auto_apply_on_menu"`
}

func toCampaignDTO(c *domain.Campaign) campaignDTO {
	dto := campaignDTO{
		ID:                 c.ID,
		Title:              c.Title,
		Subtitle:           c.Subtitle,
		Text:               c.Text,
		Image:              c.Image,
		TextPosition:       c.TextPosition,
		IsMain:             c.IsMain,
		CouponCode:         c.CouponCode,
		HideCouponCode:     c.HideCouponCode,
		DiscountType:       c.DiscountType,
		DiscountPercentage: c.DiscountPercentage,
		DiscountFixed:      c.DiscountFixed,
		MaxUsagesPerUser:   c.MaxUsagesPerUser,
		MinimumOrderAmount: c.MinimumOrderAmount,
		EligibleDishes:     c.EligibleDishes,
		HasTimeRestriction: c.HasTimeRestriction,
		StartTime:          c.StartTime,
		EndTime:            c.EndTime,
		DaysOfWeek:         c.DaysOfWeek,
		AutoApplyOnMenu:    c.AutoApplyOnMenu,
	}
	if !c.StartDate.IsZero() {
		dto.StartDate = c.StartDate.Format(dateLayout)
	}
	if !c.EndDate.IsZero() {
		dto.EndDate = c.EndDate.Format(dateLayout)
	}
	return dto
}

// toPublicCampaignDTO strips the code from campaigns that hide it; customers
// only see those applied automatically.
func toPublicCampaignDTO(c *domain.Campaign) campaignDTO {
	dto := toCampaignDTO(c)
	if c.HideCouponCode {
		dto.CouponCode = ""
	}
	return dto
}

func (d campaignDTO) toDomain(id string) (*domain.Campaign, error) {
	if id == "" {
		id = d.ID
	}
	c := &domain.Campaign{
		ID:                 id,
		Title:              d.Title,
		Subtitle:           d.Subtitle,
		Text:               d.Text,
		Image:              d.Image,
		TextPosition:       d.TextPosition,
		IsMain:             d.IsMain,
		CouponCode:         d.CouponCode,
		HideCouponCode:     d.HideCouponCode,
		DiscountType:       d.DiscountType,
		DiscountPercentage: d.DiscountPercentage,
		DiscountFixed:      d.DiscountFixed,
		MaxUsagesPerUser:   d.MaxUsagesPerUser,
		MinimumOrderAmount: d.MinimumOrderAmount,
		EligibleDishes:     d.EligibleDishes,
		HasTimeRestriction: d.HasTimeRestriction,
		StartTime:          d.StartTime,
		EndTime:            d.EndTime,
		DaysOfWeek:         d.DaysOfWeek,
		AutoApplyOnMenu:    d.AutoApplyOnMenu,
	}
	if d.StartDate != "" {
		t, err := time.Parse(dateLayout, d.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", d.StartDate)
		}
		c.StartDate = t
	}
	if d.EndDate != "" {
		t, err := time.Parse(dateLayout, d.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q", d.EndDate)
		}
		c.EndDate = t
	}
	return c, nil
}

type newsDTO struct {
	ID        string               `json:"id"`
	Title     domain.LocalizedText `json:"title"`
	Body      domain.LocalizedText `json:"body"`
	Image     string               `json:"image,omitempty"`
	Published bool                 `json:"published"`
	CreatedAt time.Time            `json:"created_at"`
}

func toNewsDTO(n *domain.News) newsDTO {
	return newsDTO{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Image:     n.Image,
		Published: n.Published,
		CreatedAt: n.CreatedAt,
	}
}

func (d newsDTO) toDomain(id string) *domain.News {
	if id == "" {
		id = d.ID
	}
	return &domain.News{
		ID:        id,
		Title:     d.Title,
		Body:      d.Body,
		Image:     d.Image,
		Published: d.Published,
	}
}

type contactInfoDTO struct {
	Address      domain.LocalizedText  `json:"address"`
	Phone        string                `json:"phone"`
	Email        string                `json:"email"`
	OpeningHours []domain.OpeningHours `json:"opening_hours"`
}

func toContactInfoDTO(info *domain.ContactInfo) contactInfoDTO {
	return contactInfoDTO{
		Address:      info.Address,
		Phone:        info.Phone,
		Email:        info.Email,
		OpeningHours: info.OpeningHours,
	}
}

func (d contactInfoDTO) toDomain() *domain.ContactInfo {
	return &domain.ContactInfo{
		Address:      d.Address,
		Phone:        d.Phone,
		Email:        d.Email,
		OpeningHours: d.OpeningHours,
	}
}

type contactMessageDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toContactMessageDTO(m *domain.ContactMessage) contactMessageDTO {
	return contactMessageDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

type statusLogDTO struct {
	Status    domain.Status `json:"status"`
	ChangedBy string        `json:"changed_by"`
	ChangedAt time.Time     `json:"changed_at"`
	Notes     *string       `json:"notes,omitempty"`
}

func toStatusLogDTO(l *domain.StatusLog) statusLogDTO {
	return statusLogDTO{
		Status:    l.Status,
		ChangedBy: l.ChangedBy,
		ChangedAt: l.ChangedAt,
		Notes:     l.Notes,
	}
}

type userDTO struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}

type orderItemDTO struct {
	ItemID          string               `json:"item_id"`
	Name            domain.LocalizedText `json:"name"`
	Volume          domain.Volume        `json:"volume,omitempty"`
	UnitPrice       float64              `json:"unit_price"`
	Quantity        int                  `json:"quantity"`
	AppliedDiscount float64              `json:"applied_discount,omitempty"`
	LineTotal       float64              `json:"line_total"`
}

type orderDTO struct {
	ID              string                  `json:"id"`
	Number          string                  `json:"number"`
	UserID          string                  `json:"user_id,omitempty"`
	Items           []orderItemDTO          `json:"items"`
	OriginalTotal   float64                 `json:"original_total"`
	FinalTotal      float64                 `json:"final_total"`
	TotalDiscount   float64                 `json:"total_discount"`
	AppliedCoupon   *domain.CouponSnapshot  `json:"applied_coupon,omitempty"`
	ServiceType     domain.ServiceType      `json:"service_type"`
	PaymentMethod   domain.PaymentMethod    `json:"payment_method"`
	DeliveryAddress *domain.DeliveryAddress `json:"delivery_address,omitempty"`
	Status          domain.Status           `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
}

func toOrderDTO(o *domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemDTO{
			ItemID:          item.ItemID,
			Name:            item.Name,
			Volume:          item.Volume,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			AppliedDiscount: item.AppliedDiscount,
			LineTotal:       item.LineTotal,
		})
	}
	return orderDTO{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		Items:           items,
		OriginalTotal:   o.OriginalTotal,
		FinalTotal:      o.FinalTotal,
		TotalDiscount:   o.TotalDiscount,
		AppliedCoupon:   o.AppliedCoupon,
		ServiceType:     o.ServiceType,
		PaymentMethod:   o.PaymentMethod,
		DeliveryAddress: o.DeliveryAddress,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}
