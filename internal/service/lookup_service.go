package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"member-lookup/internal/models"
	"member-lookup/internal/store"
	"member-lookup/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ MemberRepository = (*store.Store)(nil)

// MemberRepository is the read-only data access the lookup needs.
// *store.Store implements it.
type MemberRepository interface {
	SearchMemberships(ctx context.Context, filter store.MemberFilter, limit int) ([]models.Membership, error)
	GetFoodStoryMember(ctx context.Context, phoneNo int64) (*models.FoodStoryMember, error)
	GetRocketMember(ctx context.Context, phoneNo int64) (*models.RocketMember, error)

	GetBills(ctx context.Context, customerRef string, legacyMemberID int64, phone string, limit int) ([]models.Bill, error)
	GetCouponsTyped(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error)
	GetCouponsText(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error)
	GetCouponsContaining(ctx context.Context, customerRef string, limit int) ([]models.Coupon, error)
	GetPoints(ctx context.Context, customerRef string, limit int) ([]models.PointBalance, error)
	GetTierMovementsTyped(ctx context.Context, customerRef string, limit int) ([]models.TierMovement, error)
	GetTierMovementsText(ctx context.Context, customerRef string, limit int) ([]models.TierMovement, error)
	GetPromotions(ctx context.Context, paymentID *int64, receiptNo *string) ([]models.Promotion, error)
}

// AuditPublisher receives a record of every successful lookup
type AuditPublisher interface {
	PublishMemberSearched(ctx context.Context, event *models.MemberSearchedEvent) error
}

// Options tunes result sizes and fan-out
type Options struct {
	NameCandidateLimit     int
	ResultLimit            int
	PromotionConcurrency   int
	CouponContainsFallback bool
}

// LookupService resolves a member from partial identifying fields and
// aggregates the member's activity
type LookupService struct {
	repo   MemberRepository
	audit  AuditPublisher
	opts   Options
	logger *zap.Logger
}

// NewLookupService creates a new lookup service. audit may be nil.
func NewLookupService(repo MemberRepository, audit AuditPublisher, opts Options) *LookupService {
	if opts.NameCandidateLimit <= 0 {
		opts.NameCandidateLimit = 20
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 100
	}
	return &LookupService{
		repo:   repo,
		audit:  audit,
		opts:   opts,
		logger: util.GetLogger(),
	}
}

// Search resolves the member described by req and gathers the member's bills,
// coupons, points and tier history
func (s *LookupService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	ctx, span := util.StartSpan(ctx, "LookupService.Search")
	defer span.End()

	start := time.Now()
	defer func() {
		util.MemberSearchLatency.Observe(time.Since(start).Seconds())
	}()

	filter := store.MemberFilter{
		CustomerRef: strings.TrimSpace(req.CustomerRef),
		Mobile:      strings.TrimSpace(req.Mobile),
		Email:       strings.TrimSpace(req.Email),
		Name:        strings.TrimSpace(req.Name),
	}
	if filter.IsEmpty() {
		util.MemberSearchesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrValidation
	}

	member, candidates, err := s.resolveMember(ctx, filter)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			util.MemberSearchesTotal.WithLabelValues("not_found").Inc()
		} else {
			util.MemberSearchesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	result := s.aggregate(ctx, member)
	result.Member = member
	result.Members = candidates

	outcome := "found"
	if member.IsMigratedOnly {
		outcome = "migrated_only"
	}
	util.MemberSearchesTotal.WithLabelValues(outcome).Inc()
	util.MemberCandidatesReturned.Observe(float64(len(candidates)))

	s.logger.Info("Member search completed",
		zap.String("customer_ref", deref(member.CustomerRef)),
		zap.Int("candidates", len(candidates)),
		zap.Bool("migrated_only", member.IsMigratedOnly),
		zap.Int("bills", len(result.Bills)),
		zap.Int("coupons", len(result.Coupons)),
		zap.Int("points", len(result.Points)),
		zap.Int("tier_movements", len(result.TierMovements)))

	s.publishAudit(filter, req.ClientIP, result)

	return result, nil
}

// resolveMember settles on one member. With exact fields the search is a
// unique lookup; a name-only search may return several candidates, the first
// of which is resolved.
func (s *LookupService) resolveMember(ctx context.Context, filter store.MemberFilter) (*models.ResolvedMember, []models.ResolvedMember, error) {
	ctx, span := util.StartSpan(ctx, "LookupService.resolveMember")
	defer span.End()

	limit := s.opts.NameCandidateLimit
	if filter.HasExact() {
		limit = 1
	}

	rows, err := s.repo.SearchMemberships(ctx, filter, limit)
	if err != nil {
		util.FailSpan(span, err)
		return nil, nil, fmt.Errorf("failed to search memberships: %w", err)
	}

	if len(rows) == 0 {
		sources := s.findMigratedSources(ctx, filter.Mobile)
		if len(sources) == 0 {
			return nil, nil, ErrMemberNotFound
		}

		member := placeholderMember(filter.Mobile, sources)
		s.logger.Info("Member found in migrated sources only",
			zap.Int("sources", len(sources)))
		return &member, []models.ResolvedMember{member}, nil
	}

	member := models.ResolvedMember{Membership: rows[0]}
	member.MigratedSources = s.findMigratedSources(ctx, deref(rows[0].Mobile))

	candidates := make([]models.ResolvedMember, len(rows))
	candidates[0] = member
	for i := 1; i < len(rows); i++ {
		candidates[i] = models.ResolvedMember{Membership: rows[i]}
	}

	return &member, candidates, nil
}

// findMigratedSources looks the phone number up in both migrated tables.
// The lookups are independent: a failure in one is logged and the other
// still contributes.
func (s *LookupService) findMigratedSources(ctx context.Context, phone string) []models.MigratedSource {
	phoneNo, ok := normalizePhone(phone)
	if !ok {
		return nil
	}

	var (
		foodStory *models.FoodStoryMember
		rocket    *models.RocketMember
		g         errgroup.Group
	)

	g.Go(func() error {
		m, err := s.repo.GetFoodStoryMember(ctx, phoneNo)
		if err != nil {
			util.LegacyLookupFailures.WithLabelValues(models.SourceFoodStory).Inc()
			s.logger.Warn("Failed to query migrated Food Story member",
				zap.Int64("phone_no", phoneNo),
				zap.Error(err))
			return nil
		}
		foodStory = m
		return nil
	})

	g.Go(func() error {
		m, err := s.repo.GetRocketMember(ctx, phoneNo)
		if err != nil {
			util.LegacyLookupFailures.WithLabelValues(models.SourceRocket).Inc()
			s.logger.Warn("Failed to query migrated Rocket member",
				zap.Int64("phone_no", phoneNo),
				zap.Error(err))
			return nil
		}
		rocket = m
		return nil
	})

	_ = g.Wait()

	var sources []models.MigratedSource
	if foodStory != nil {
		util.LegacyMatchesTotal.WithLabelValues(models.SourceFoodStory).Inc()
		sources = append(sources, models.MigratedSource{Source: models.SourceFoodStory, Data: foodStory})
	}
	if rocket != nil {
		util.LegacyMatchesTotal.WithLabelValues(models.SourceRocket).Inc()
		sources = append(sources, models.MigratedSource{Source: models.SourceRocket, Data: rocket})
	}
	return sources
}

// publishAudit sends the lookup record in the background
func (s *LookupService) publishAudit(filter store.MemberFilter, clientIP string, result *models.SearchResult) {
	if s.audit == nil {
		return
	}

	event := &models.MemberSearchedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeMemberSearched,
			Timestamp: time.Now(),
		},
		Criteria:       criteriaOf(filter),
		CustomerRef:    deref(result.Member.CustomerRef),
		CandidateCount: len(result.Members),
		MigratedOnly:   result.Member.IsMigratedOnly,
		ClientIP:       clientIP,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.audit.PublishMemberSearched(ctx, event); err != nil {
			util.AuditEventsPublished.WithLabelValues("failed").Inc()
			s.logger.Error("Failed to publish MemberSearched event", zap.Error(err))
			return
		}
		util.AuditEventsPublished.WithLabelValues("ok").Inc()
	}()
}

func criteriaOf(filter store.MemberFilter) []string {
	var criteria []string
	if filter.CustomerRef != "" {
		criteria = append(criteria, "customer_ref")
	}
	if filter.Mobile != "" {
		criteria = append(criteria, "mobile")
	}
	if filter.Email != "" {
		criteria = append(criteria, "email")
	}
	if filter.Name != "" {
		criteria = append(criteria, "name")
	}
	return criteria
}
