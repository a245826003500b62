package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var coupon, address []byte
	if order.AppliedCoupon != nil {
		if coupon, err = json.Marshal(order.AppliedCoupon); err != nil {
			return fmt.Errorf("failed to encode coupon snapshot: %w", err)
		}
	}
	if order.DeliveryAddress != nil {
		if address, err = json.Marshal(order.DeliveryAddress); err != nil {
			return fmt.Errorf("failed to encode delivery address: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, number, user_id, original_total, final_total, total_discount,
		                    applied_coupon, service_type, payment_method, delivery_address,
		                    status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.Number, order.UserID,
		order.OriginalTotal, order.FinalTotal, order.TotalDiscount,
		coupon, order.ServiceType, order.PaymentMethod, address,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		itemQuery := `
			INSERT INTO order_items (order_id, item_id, name_en, name_sv, volume,
			                         unit_price, quantity, applied_discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		err = tx.QueryRow(ctx, itemQuery,
			order.ID, item.ItemID, item.Name.English, item.Name.Swedish, item.Volume,
			item.UnitPrice, item.Quantity, item.AppliedDiscount, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		item.OrderID = order.ID
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err = tx.Exec(ctx, logQuery, order.ID, order.Status, "checkout", time.Now()); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, number, user_id, original_total, final_total, total_discount,
	       applied_coupon, service_type, payment_method, delivery_address,
	       status, created_at, updated_at`

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	rows.Close()

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, item_id, name_en, name_sv, volume,
		       unit_price, quantity, applied_discount, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ItemID, &item.Name.English, &item.Name.Swedish,
			&item.Volume, &item.UnitPrice, &item.Quantity, &item.AppliedDiscount, &item.LineTotal,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id)
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, logQuery, id, status, changedBy, time.Now()); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StatusLog
	for rows.Next() {
		var entry domain.StatusLog
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, &entry)
	}

	return logs, nil
}

func (r *orderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	prefix := fmt.Sprintf("ORD_%s_", now.Format("20060102"))

	query := `
		SELECT COUNT(*) FROM orders
		WHERE number LIKE $1 AND DATE(created_at) = $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, prefix+"%", now.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count orders: %w", err)
	}

	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		order           domain.Order
		coupon, address []byte
	)
	err := row.Scan(
		&order.ID, &order.Number, &order.UserID,
		&order.OriginalTotal, &order.FinalTotal, &order.TotalDiscount,
		&coupon, &order.ServiceType, &order.PaymentMethod, &address,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(coupon) > 0 {
		order.AppliedCoupon = &domain.CouponSnapshot{}
		if err := json.Unmarshal(coupon, order.AppliedCoupon); err != nil {
			return nil, fmt.Errorf("failed to decode coupon snapshot: %w", err)
		}
	}
	if len(address) > 0 {
		order.DeliveryAddress = &domain.DeliveryAddress{}
		if err := json.Unmarshal(address, order.DeliveryAddress); err != nil {
			return nil, fmt.Errorf("failed to decode delivery address: %w", err)
		}
	}
	return &order, nil
}
