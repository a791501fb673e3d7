package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership is a row of primo_memberships, the authoritative identity source
type Membership struct {
	CustomerRef   *string    `db:"customer_ref" json:"customer_ref"`
	Mobile        *string    `db:"mobile" json:"mobile"`
	Email         *string    `db:"email" json:"email"`
	FirstnameTH   *string    `db:"firstname_th" json:"firstname_th"`
	LastnameTH    *string    `db:"lastname_th" json:"lastname_th"`
	FirstnameEN   *string    `db:"firstname_en" json:"firstname_en"`
	LastnameEN    *string    `db:"lastname_en" json:"lastname_en"`
	MemberStatus  *string    `db:"member_status" json:"member_status"`
	AccountStatus *string    `db:"account_status" json:"account_status"`
	LastActiveAt  *time.Time `db:"last_active_at" json:"last_active_at"`
}

// FoodStoryMember is a row of migrate_food_story_members
type FoodStoryMember struct {
	PhoneNo       int64               `db:"phone_no" json:"phone_no"`
	FirstnameTH   *string             `db:"firstname_th" json:"firstname_th"`
	LastnameTH    *string             `db:"lastname_th" json:"lastname_th"`
	FirstnameEN   *string             `db:"firstname_en" json:"firstname_en"`
	LastnameEN    *string             `db:"lastname_en" json:"lastname_en"`
	CurrentPoint  decimal.NullDecimal `db:"current_point" json:"current_point"`
	TierID        *int64              `db:"tier_id" json:"tier_id"`
	TierName      *string             `db:"tier_name" json:"tier_name"`
	BirthDate     *time.Time          `db:"birth_date" json:"birth_date"`
	TierEntryDate *time.Time          `db:"tier_entry_date" json:"tier_entry_date"`
	CreatedDate   *time.Time          `db:"created_date" json:"created_date"`
	UpdatedDate   *time.Time          `db:"updated_date" json:"updated_date"`
}

// RocketMember is a row of migrate_rocket_members
type RocketMember struct {
	PhoneNo          int64               `db:"phone_no" json:"phone_no"`
	Fullname         *string             `db:"fullname" json:"fullname"`
	CurrentPoint     decimal.NullDecimal `db:"current_point" json:"current_point"`
	TierName         *string             `db:"tier_name" json:"tier_name"`
	Birthdate        *time.Time          `db:"birthdate" json:"birthdate"`
	RegisterDate     *time.Time          `db:"register_date" json:"register_date"`
	LastLoginDate    *time.Time          `db:"last_login_date" json:"last_login_date"`
	LastActivityDate *time.Time          `db:"last_activity_date" json:"last_activity_date"`
}

// Migrated source tags
const (
	SourceFoodStory = "food_story"
	SourceRocket    = "rocket"
)

// MigratedSource tags a legacy record with the system it came from.
// Data is a *FoodStoryMember or a *RocketMember.
type MigratedSource struct {
	Source string      `json:"source"`
	Data   interface{} `json:"data"`
}

// FoodStory returns the Food Story record, or nil for other sources
func (m MigratedSource) FoodStory() *FoodStoryMember {
	fs, _ := m.Data.(*FoodStoryMember)
	return fs
}

// Rocket returns the Rocket record, or nil for other sources
func (m MigratedSource) Rocket() *RocketMember {
	r, _ := m.Data.(*RocketMember)
	return r
}

// ResolvedMember is the member a search settles on, with legacy enrichment
type ResolvedMember struct {
	Membership
	MigratedSources []MigratedSource `json:"migratedSources,omitempty"`
	IsMigratedOnly  bool             `json:"isMigratedOnly"`
}

// Bill is a row of food_story_bill_detail
type Bill struct {
	PaymentDate         *time.Time          `db:"payment_date" json:"payment_date"`
	PaymentTime         *string             `db:"payment_time" json:"payment_time"`
	PaymentID           *int64              `db:"payment_id" json:"payment_id"`
	ReceiptNo           *string             `db:"receipt_no" json:"receipt_no"`
	TaxInvNo            *string             `db:"tax_inv_no" json:"tax_inv_no"`
	Void                *bool               `db:"void" json:"void"`
	PriceBeforeDiscount decimal.NullDecimal `db:"price_before_discount" json:"price_before_discount"`
	ItemDiscount        decimal.NullDecimal `db:"item_discount" json:"item_discount"`
	IncludeRevenue      *bool               `db:"include_revenue" json:"include_revenue"`
	FsCrmMemberID       *int64              `db:"fs_crm_member_id" json:"fs_crm_member_id"`
	CusCrmMemberID      *string             `db:"cus_crm_member_id" json:"cus_crm_member_id"`
	CustomerPhoneNumber *string             `db:"customer_phone_number" json:"customer_phone_number"`
	CustomerName        *string             `db:"customer_name" json:"customer_name"`
	BillDiscountedPrice decimal.NullDecimal `db:"bill_discounted_price" json:"bill_discounted_price"`
	SubAmount           decimal.NullDecimal `db:"sub_amount" json:"sub_amount"`
	SubBeforeTax        decimal.NullDecimal `db:"sub_before_tax" json:"sub_before_tax"`
	Tax                 decimal.NullDecimal `db:"tax" json:"tax"`
	RoundingAmount      decimal.NullDecimal `db:"rounding_amount" json:"rounding_amount"`
	VoucherDiscount     decimal.NullDecimal `db:"voucher_discount" json:"voucher_discount"`
	NetPaid             decimal.NullDecimal `db:"net_paid" json:"net_paid"`
	BranchCode          *string             `db:"branch_code" json:"branch_code"`
	StoreName           *string             `db:"store_name" json:"store_name"`
	PaymentType         *string             `db:"payment_type" json:"payment_type"`
	OrderType           *string             `db:"order_type" json:"order_type"`
}

// HasPromotionKey reports whether the bill can be joined to food_story_promotion
func (b *Bill) HasPromotionKey() bool {
	return (b.PaymentID != nil && *b.PaymentID != 0) || (b.ReceiptNo != nil && *b.ReceiptNo != "")
}

// Promotion is a row of food_story_promotion
type Promotion struct {
	PaymentDate         *time.Time          `db:"payment_date" json:"payment_date"`
	PaymentTime         *string             `db:"payment_time" json:"payment_time"`
	PaymentID           *int64              `db:"payment_id" json:"payment_id"`
	InvoiceItemID       *string             `db:"invoice_item_id" json:"invoice_item_id"`
	ReceiptNo           *string             `db:"receipt_no" json:"receipt_no"`
	TaxInvNo            *string             `db:"tax_inv_no" json:"tax_inv_no"`
	Void                *bool               `db:"void" json:"void"`
	PromotionID         *int64              `db:"promotion_id" json:"promotion_id"`
	PromotionType       *string             `db:"promotion_type" json:"promotion_type"`
	FinalProRefCode     *string             `db:"final_pro_ref_code" json:"final_pro_ref_code"`
	PromotionName       *string             `db:"promotion_name" json:"promotion_name"`
	BillDiscountedPrice decimal.NullDecimal `db:"bill_discounted_price" json:"bill_discounted_price"`
	BeforeVat           decimal.NullDecimal `db:"before_vat" json:"before_vat"`
	VatAmount           decimal.NullDecimal `db:"vat_amount" json:"vat_amount"`
	BranchCode          *string             `db:"branch_code" json:"branch_code"`
	StoreName           *string             `db:"store_name" json:"store_name"`
	PaymentType         *string             `db:"payment_type" json:"payment_type"`
	OrderType           *string             `db:"order_type" json:"order_type"`
}

// BillWithPromotions is a bill plus the discount lines attached to it
type BillWithPromotions struct {
	Bill
	Promotions []Promotion `json:"promotions"`
}

// Coupon is a row of primo_coupons. CustomerRef is only projected by the
// containment query, where it is needed to discard foreign matches.
type Coupon struct {
	CouponCode   *string    `db:"coupon_code" json:"coupon_code"`
	CouponType   *string    `db:"coupon_type" json:"coupon_type"`
	CouponStatus *string    `db:"coupon_status" json:"coupon_status"`
	ExpiredAt    *time.Time `db:"expired_at" json:"expired_at"`
	RedeemedAt   *time.Time `db:"redeemed_at" json:"redeemed_at"`
	UsedAt       *time.Time `db:"used_at" json:"used_at"`
	Campaign     *string    `db:"campaign" json:"campaign"`
	Brand        *string    `db:"brand" json:"brand"`
	CustomerRef  *string    `db:"customer_ref" json:"-"`
}

// PointBalance is a row of primo_point_on_hand
type PointBalance struct {
	PointBalance  decimal.NullDecimal `db:"point_balance" json:"point_balance"`
	PointCurrency *string             `db:"point_currency" json:"point_currency"`
	ExpiredDate   *time.Time          `db:"expired_date" json:"expired_date"`
	PointType     *string             `db:"point_type" json:"point_type"`
}

// TierMovement is a row of primo_member_tier_movement, or an entry
// synthesized from a migrated source
type TierMovement struct {
	LogID                   *string    `db:"log_id" json:"log_id"`
	CustomerRef             *string    `db:"customer_ref" json:"customer_ref"`
	LoyaltyProgramID        *int64     `db:"loyalty_program_id" json:"loyalty_program_id"`
	LoyaltyProgramName      *string    `db:"loyalty_program_name" json:"loyalty_program_name"`
	TierGroupID             *int64     `db:"tier_group_id" json:"tier_group_id"`
	TierGroupName           *string    `db:"tier_group_name" json:"tier_group_name"`
	TierID                  *int64     `db:"tier_id" json:"tier_id"`
	TierName                *string    `db:"tier_name" json:"tier_name"`
	EntryDate               *time.Time `db:"entry_date" json:"entry_date"`
	ExpiredDate             *time.Time `db:"expired_date" json:"expired_date"`
	RetentionNextExpireDate *string    `db:"retention_next_expire_date" json:"retention_next_expire_date"`
	PromotionNextEntryDate  *string    `db:"promotion_next_entry_date" json:"promotion_next_entry_date"`
	PromotionNextExpireDate *string    `db:"promotion_next_expire_date" json:"promotion_next_expire_date"`
	PreviousTierID          *int64     `db:"previous_tier_id" json:"previous_tier_id"`
	PreviousTierName        *string    `db:"previous_tier_name" json:"previous_tier_name"`
	PromotionNextTierID     *int64     `db:"promotion_next_tier_id" json:"promotion_next_tier_id"`
	PromotionNextTierName   *string    `db:"promotion_next_tier_name" json:"promotion_next_tier_name"`
	GracePeriodStartDate    *string    `db:"grace_period_start_date" json:"grace_period_start_date"`
	GracePeriodEndDate      *string    `db:"grace_period_end_date" json:"grace_period_end_date"`
	CreatedAt               *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               *time.Time `db:"updated_at" json:"updated_at"`
	Owner                   *string    `db:"owner" json:"owner"`
}

// Synthesized tier movement labels
const (
	MigratedTierGroup        = "Migrated"
	FoodStoryMigratedProgram = "Food Story (Migrated)"
	RocketMigratedProgram    = "Rocket (Migrated)"
)

// SearchRequest holds the optional identifying fields of a lookup
type SearchRequest struct {
	CustomerRef string `json:"customer_ref"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	Name        string `json:"name"`

	// ClientIP is filled in by the HTTP layer for the audit trail
	ClientIP string `json:"-"`
}

// SearchResult is the aggregated lookup response
type SearchResult struct {
	Member        *ResolvedMember      `json:"member"`
	Members       []ResolvedMember     `json:"members"`
	Bills         []BillWithPromotions `json:"bills"`
	Coupons       []Coupon             `json:"coupons"`
	Points        []PointBalance       `json:"points"`
	TierMovements []TierMovement       `json:"tierMovements"`
}
