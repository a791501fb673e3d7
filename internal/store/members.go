package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"member-lookup/internal/models"
)

const membershipColumns = `
		customer_ref,
		mobile,
		email,
		firstname_th,
		lastname_th,
		firstname_en,
		lastname_en,
		member_status,
		account_status,
		last_active_at`

// SearchMemberships finds membership rows matching the filter
func (s *Store) SearchMemberships(ctx context.Context, filter MemberFilter, limit int) ([]models.Membership, error) {
	if filter.IsEmpty() {
		return nil, fmt.Errorf("empty member filter")
	}

	where, args := filter.Where()
	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM primo_memberships
		WHERE %s
		ORDER BY last_active_at DESC NULLS LAST, customer_ref
		LIMIT $%d`, membershipColumns, where, len(args))

	var members []models.Membership
	if err := s.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, err
	}
	return members, nil
}

// GetFoodStoryMember retrieves a migrated Food Story member by phone number.
// Returns nil when there is no such member.
func (s *Store) GetFoodStoryMember(ctx context.Context, phoneNo int64) (*models.FoodStoryMember, error) {
	var m models.FoodStoryMember
	err := s.db.GetContext(ctx, &m, `
		SELECT
			phone_no,
			firstname_th,
			lastname_th,
			firstname_en,
			lastname_en,
			current_point,
			tier_id,
			tier_name,
			birth_date,
			tier_entry_date,
			created_date,
			updated_date
		FROM migrate_food_story_members
		WHERE phone_no = $1
		LIMIT 1`, phoneNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetRocketMember retrieves a migrated Rocket member by phone number.
// Returns nil when there is no such member.
func (s *Store) GetRocketMember(ctx context.Context, phoneNo int64) (*models.RocketMember, error) {
	var m models.RocketMember
	err := s.db.GetContext(ctx, &m, `
		SELECT
			phone_no,
			fullname,
			current_point,
			tier_name,
			birthdate,
			register_date,
			last_login_date,
			last_activity_date
		FROM migrate_rocket_members
		WHERE phone_no = $1
		LIMIT 1`, phoneNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
