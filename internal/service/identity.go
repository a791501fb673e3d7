package service

import (
	"strconv"
	"strings"
	"unicode"

	"member-lookup/internal/models"
)

// normalizePhone strips everything but digits and parses the rest as the
// integer key used by the migrated member tables ("081-234-5678" -> 812345678).
func normalizePhone(phone string) (int64, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// legacyMemberID reads the leading integer of a customer ref, the way the
// bill feed derived fs_crm_member_id. Refs without one map to 0.
func legacyMemberID(customerRef string) int64 {
	s := strings.TrimLeftFunc(customerRef, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	// Out of int64 range is treated as no id; no real bill carries one.
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// splitFullName splits on the first space. The last name is nil for a
// single-word name.
func splitFullName(fullname string) (first, last *string) {
	fullname = strings.TrimSpace(fullname)
	if fullname == "" {
		return nil, nil
	}

	f, l, found := strings.Cut(fullname, " ")
	first = &f
	if l = strings.TrimSpace(l); found && l != "" {
		last = &l
	}
	return first, last
}

// placeholderMember builds the member shown when only migrated sources know
// the phone number. Food Story names win; Rocket's full name fills the Thai
// name fields when Food Story has none.
func placeholderMember(mobile string, sources []models.MigratedSource) models.ResolvedMember {
	member := models.ResolvedMember{
		MigratedSources: sources,
		IsMigratedOnly:  true,
	}
	if mobile != "" {
		member.Mobile = &mobile
	}

	for _, src := range sources {
		if fs := src.FoodStory(); fs != nil {
			member.FirstnameTH = coalesce(member.FirstnameTH, fs.FirstnameTH)
			member.LastnameTH = coalesce(member.LastnameTH, fs.LastnameTH)
			member.FirstnameEN = coalesce(member.FirstnameEN, fs.FirstnameEN)
			member.LastnameEN = coalesce(member.LastnameEN, fs.LastnameEN)
		}
	}
	for _, src := range sources {
		if r := src.Rocket(); r != nil && r.Fullname != nil {
			first, last := splitFullName(*r.Fullname)
			member.FirstnameTH = coalesce(member.FirstnameTH, first)
			member.LastnameTH = coalesce(member.LastnameTH, last)
		}
	}

	return member
}

// synthesizeTierMovements derives one tier entry per migrated source that
// carries a tier name.
func synthesizeTierMovements(sources []models.MigratedSource) []models.TierMovement {
	group := models.MigratedTierGroup
	movements := make([]models.TierMovement, 0, len(sources))

	for _, src := range sources {
		switch src.Source {
		case models.SourceFoodStory:
			fs := src.FoodStory()
			if fs == nil || blank(fs.TierName) {
				continue
			}
			program := models.FoodStoryMigratedProgram
			movements = append(movements, models.TierMovement{
				TierID:             fs.TierID,
				TierName:           fs.TierName,
				EntryDate:          fs.TierEntryDate,
				LoyaltyProgramName: &program,
				TierGroupName:      &group,
			})
		case models.SourceRocket:
			r := src.Rocket()
			if r == nil || blank(r.TierName) {
				continue
			}
			program := models.RocketMigratedProgram
			movements = append(movements, models.TierMovement{
				TierName:           r.TierName,
				LoyaltyProgramName: &program,
				TierGroupName:      &group,
			})
		}
	}

	return movements
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func coalesce(current, candidate *string) *string {
	if !blank(current) {
		return current
	}
	if !blank(candidate) {
		return candidate
	}
	return current
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
