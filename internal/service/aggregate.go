package service

import (
	"context"
	"strings"

	"member-lookup/internal/models"
	"member-lookup/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// aggregate gathers the resolved member's dependent data. The four categories
// are queried concurrently and the result is assembled once all have settled.
// A failing category degrades to an empty list.
func (s *LookupService) aggregate(ctx context.Context, member *models.ResolvedMember) *models.SearchResult {
	ctx, span := util.StartSpan(ctx, "LookupService.aggregate")
	defer span.End()

	result := &models.SearchResult{
		Bills:         []models.BillWithPromotions{},
		Coupons:       []models.Coupon{},
		Points:        []models.PointBalance{},
		TierMovements: []models.TierMovement{},
	}

	// Migrated-only members have no customer ref to join on.
	if ref := deref(member.CustomerRef); ref != "" {
		mobile := deref(member.Mobile)

		var g errgroup.Group
		g.Go(func() error {
			result.Bills = s.loadBills(ctx, ref, mobile)
			return nil
		})
		g.Go(func() error {
			result.Coupons = s.loadCoupons(ctx, ref)
			return nil
		})
		g.Go(func() error {
			result.Points = s.loadPoints(ctx, ref)
			return nil
		})
		g.Go(func() error {
			result.TierMovements = s.loadTierMovements(ctx, ref)
			return nil
		})
		_ = g.Wait()
	}

	if len(result.TierMovements) == 0 && len(member.MigratedSources) > 0 {
		result.TierMovements = synthesizeTierMovements(member.MigratedSources)
		util.TierMovementsSynthesized.Add(float64(len(result.TierMovements)))
	}

	return result
}

func (s *LookupService) loadBills(ctx context.Context, customerRef, mobile string) []models.BillWithPromotions {
	bills, err := s.repo.GetBills(ctx, customerRef, legacyMemberID(customerRef), mobile, s.opts.ResultLimit)
	if err != nil {
		s.degrade("bills", customerRef, err)
		return []models.BillWithPromotions{}
	}
	return s.attachPromotions(ctx, bills)
}

// attachPromotions fetches each bill's promotions concurrently. Output order
// follows the bills; a failed fetch leaves that bill with no promotions.
func (s *LookupService) attachPromotions(ctx context.Context, bills []models.Bill) []models.BillWithPromotions {
	out := make([]models.BillWithPromotions, len(bills))

	var g errgroup.Group
	if s.opts.PromotionConcurrency > 0 {
		g.SetLimit(s.opts.PromotionConcurrency)
	}

	for i := range bills {
		i := i
		out[i] = models.BillWithPromotions{Bill: bills[i], Promotions: []models.Promotion{}}
		if !bills[i].HasPromotionKey() {
			continue
		}

		g.Go(func() error {
			promotions, err := s.repo.GetPromotions(ctx, bills[i].PaymentID, bills[i].ReceiptNo)
			if err != nil {
				util.DependentQueryDegraded.WithLabelValues("promotions").Inc()
				s.logger.Warn("Failed to fetch promotions",
					zap.Int64p("payment_id", bills[i].PaymentID),
					zap.Stringp("receipt_no", bills[i].ReceiptNo),
					zap.Error(err))
				return nil
			}
			if promotions != nil {
				out[i].Promotions = promotions
			}
			return nil
		})
	}

	_ = g.Wait()
	return out
}

func (s *LookupService) loadCoupons(ctx context.Context, customerRef string) []models.Coupon {
	limit := s.opts.ResultLimit
	tiers := []queryTier[models.Coupon]{
		{name: "typed", run: func(ctx context.Context) ([]models.Coupon, error) {
			return s.repo.GetCouponsTyped(ctx, customerRef, limit)
		}},
		{name: "text", run: func(ctx context.Context) ([]models.Coupon, error) {
			return s.repo.GetCouponsText(ctx, customerRef, limit)
		}},
	}
	if s.opts.CouponContainsFallback {
		tiers = append(tiers, queryTier[models.Coupon]{name: "containing", run: func(ctx context.Context) ([]models.Coupon, error) {
			coupons, err := s.repo.GetCouponsContaining(ctx, customerRef, limit)
			if err != nil {
				return nil, err
			}
			own := ownCoupons(coupons, customerRef)
			if len(own) > limit {
				own = own[:limit]
			}
			return own, nil
		}})
	}

	coupons, err := firstSuccessful(ctx, s.logger, "coupons", tiers)
	if err != nil {
		s.degrade("coupons", customerRef, err)
		return []models.Coupon{}
	}
	return nonNil(coupons)
}

// ownCoupons keeps only rows whose ref is exactly customerRef. The store
// already filters this way; matches such as CUST10 for CUST1 are dropped here
// too so no other member's coupons reach the response.
func ownCoupons(coupons []models.Coupon, customerRef string) []models.Coupon {
	own := make([]models.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.CustomerRef != nil && strings.TrimSpace(*c.CustomerRef) == customerRef {
			own = append(own, c)
		}
	}
	return own
}

func (s *LookupService) loadPoints(ctx context.Context, customerRef string) []models.PointBalance {
	points, err := s.repo.GetPoints(ctx, customerRef, s.opts.ResultLimit)
	if err != nil {
		s.degrade("points", customerRef, err)
		return []models.PointBalance{}
	}
	return nonNil(points)
}

func (s *LookupService) loadTierMovements(ctx context.Context, customerRef string) []models.TierMovement {
	limit := s.opts.ResultLimit
	tiers := []queryTier[models.TierMovement]{
		{name: "typed", run: func(ctx context.Context) ([]models.TierMovement, error) {
			return s.repo.GetTierMovementsTyped(ctx, customerRef, limit)
		}},
		{name: "text", run: func(ctx context.Context) ([]models.TierMovement, error) {
			return s.repo.GetTierMovementsText(ctx, customerRef, limit)
		}},
	}

	rows, err := firstSuccessful(ctx, s.logger, "tier_movements", tiers)
	if err != nil {
		s.degrade("tier_movements", customerRef, err)
		return []models.TierMovement{}
	}
	return nonNil(rows)
}

func (s *LookupService) degrade(category, customerRef string, err error) {
	util.DependentQueryDegraded.WithLabelValues(category).Inc()
	s.logger.Error("Dependent query failed, returning empty result",
		zap.String("category", category),
		zap.String("customer_ref", customerRef),
		zap.Error(err))
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
