package store

import (
	"context"
	"fmt"
	"strings"

	"member-lookup/internal/models"
)

const couponColumns = `
		coupon_code,
		coupon_type,
		coupon_status,
		expired_at,
		redeemed_at,
		used_at,
		campaign,
		brand`

const couponOrder = `ORDER BY COALESCE(expired_at, redeemed_at, used_at) DESC NULLS LAST`

const tierMovementColumns = `
		log_id,
		customer_ref,
		loyalty_program_id,
		loyalty_program_name,
		tier_group_id,
		tier_group_name,
		tier_id,
		tier_name,
		entry_date,
		expired_date,
		retention_next_expire_date,
		promotion_next_entry_date,
		promotion_next_expire_date,
		previous_tier_id,
		previous_tier_name,
		promotion_next_tier_id,
		promotion_next_tier_name,
		grace_period_start_date,
		grace_period_end_date,
		created_at,
		updated_at,
		owner`

// GetBills retrieves a member's bills. Upstream systems link bills by the
// customer ref as text, by the legacy numeric member id, or by phone.
func (s *Store) GetBills(ctx context.Context, customerRef string, legacyMemberID int64, phone string, limit int) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.SelectContext(ctx, &bills, `
		SELECT
			payment_date,
			payment_time,
			payment_id,
			receipt_no,
			tax_inv_no,
			void,
			price_before_discount,
			item_discount,
			include_revenue,
			fs_crm_member_id,
			cus_crm_member_id,
			customer_phone_number,
			customer_name,
			bill_discounted_price,
			sub_amount,
			sub_before_tax,
			tax,
			rounding_amount,
			voucher_discount,
			net_paid,
			branch_code,
			store_name,
			payment_type,
			order_type
		FROM food_story_bill_detail
		WHERE cus_crm_member_id::text = $1
		   OR fs_crm_member_id = $2
		   OR customer_phone_number = $3
		ORDER BY payment_date DESC, payment_time DESC
		LIMIT $4`, customerRef, legacyMemberID, phone, limit)
	return bills, err
}

// GetCouponsTyped matches customer_ref either as text or in its native type
func (s *Store) GetCouponsTyped(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.SelectContext(ctx, &coupons, `
		SELECT`+couponColumns+`
		FROM primo_coupons
		WHERE customer_ref::text = $1::text
		   OR customer_ref = $1
		`+couponOrder+`
		LIMIT $2`, customerRef, limit)
	return coupons, err
}

// GetCouponsText matches customer_ref with plain equality
func (s *Store) GetCouponsText(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.SelectContext(ctx, &coupons, `
		SELECT`+couponColumns+`
		FROM primo_coupons
		WHERE customer_ref = $1
		`+couponOrder+`
		LIMIT $2`, customerRef, limit)
	return coupons, err
}

// GetCouponsContaining matches customer_ref by its text containing the given
// ref, for columns whose stored form carries padding the equality forms miss.
// Only rows whose trimmed ref equals customerRef survive, and they are
// filtered before the limit so longer refs such as CUST10 never crowd out
// the member's own coupons.
func (s *Store) GetCouponsContaining(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.SelectContext(ctx, &coupons, `
		SELECT`+couponColumns+`,
			customer_ref::text AS customer_ref
		FROM primo_coupons
		WHERE customer_ref::text ILIKE $1
			AND TRIM(customer_ref::text) = $2
		`+couponOrder+`
		LIMIT $3`, "%"+escapeLike(customerRef)+"%", customerRef, limit)
	return coupons, err
}

// GetPoints retrieves a member's point balances, most recently updated first
func (s *Store) GetPoints(ctx context.Context, customerRef string, limit int) ([]models.PointBalance, error) {
	var points []models.PointBalance
	err := s.db.SelectContext(ctx, &points, `
		SELECT
			point_balance,
			point_currency,
			expired_date,
			point_type
		FROM primo_point_on_hand
		WHERE customer_ref = $1
		ORDER BY updated_at DESC
		LIMIT $2`, customerRef, limit)
	return points, err
}

// GetTierMovementsTyped matches customer_ref either as text or in its native type
func (s *Store) GetTierMovementsTyped(ctx context.Context, customerRef string, limit int) ([]models.TierMovement, error) {
	var rows []models.TierMovement
	err := s.db.SelectContext(ctx, &rows, `
		SELECT`+tierMovementColumns+`
		FROM primo_member_tier_movement
		WHERE customer_ref::text = $1::text
		   OR customer_ref = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $2`, customerRef, limit)
	return rows, err
}

// GetTierMovementsText matches customer_ref with plain equality
func (s *Store) GetTierMovementsText(ctx context.Context, customerRef string, limit int) ([]models.TierMovement, error) {
	var rows []models.TierMovement
	err := s.db.SelectContext(ctx, &rows, `
		SELECT`+tierMovementColumns+`
		FROM primo_member_tier_movement
		WHERE customer_ref = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $2`, customerRef, limit)
	return rows, err
}

// GetPromotions retrieves the promotion lines of a bill, matched by payment id
// or receipt number. A zero payment id or empty receipt number is ignored.
func (s *Store) GetPromotions(ctx context.Context, paymentID *int64, receiptNo *string) ([]models.Promotion, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if paymentID != nil && *paymentID != 0 {
		args = append(args, *paymentID)
		conditions = append(conditions, fmt.Sprintf("payment_id = $%d", len(args)))
	}
	if receiptNo != nil && *receiptNo != "" {
		args = append(args, *receiptNo)
		conditions = append(conditions, fmt.Sprintf("receipt_no = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("bill has neither payment id nor receipt number")
	}

	var promotions []models.Promotion
	err := s.db.SelectContext(ctx, &promotions, `
		SELECT
			payment_date,
			payment_time,
			payment_id,
			invoice_item_id,
			receipt_no,
			tax_inv_no,
			void,
			promotion_id,
			promotion_type,
			final_pro_ref_code,
			promotion_name,
			bill_discounted_price,
			before_vat,
			vat_amount,
			branch_code,
			store_name,
			payment_type,
			order_type
		FROM food_story_promotion
		WHERE `+strings.Join(conditions, " OR ")+`
		ORDER BY payment_date DESC, payment_time DESC`, args...)
	return promotions, err
}
