package service

import (
	"context"
	"testing"

	"member-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0899999999", 899999999, true},
		{"081-234-5678", 812345678, true},
		{"+66 81 234 5678", 66812345678, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"000", 0, false},
	}

	for _, tt := range tests {
		got, ok := normalizePhone(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLegacyMemberID(t *testing.T) {
	assert.Equal(t, int64(0), legacyMemberID("CUST1"))
	assert.Equal(t, int64(12345), legacyMemberID("12345"))
	assert.Equal(t, int64(123), legacyMemberID(" 123abc"))
	assert.Equal(t, int64(-7), legacyMemberID("-7"))
	assert.Equal(t, int64(0), legacyMemberID(""))
	assert.Equal(t, int64(0), legacyMemberID("99999999999999999999"))
}

func TestSplitFullName(t *testing.T) {
	first, last := splitFullName("  Manee Meena ")
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.Equal(t, "Manee", *first)
	assert.Equal(t, "Meena", *last)

	first, last = splitFullName("Manee")
	assert.Equal(t, "Manee", *first)
	assert.Nil(t, last)

	first, last = splitFullName("   ")
	assert.Nil(t, first)
	assert.Nil(t, last)
}

func TestPlaceholderMember(t *testing.T) {
	t.Run("food story names win over rocket", func(t *testing.T) {
		sources := []models.MigratedSource{
			{Source: models.SourceFoodStory, Data: &models.FoodStoryMember{
				FirstnameTH: ptr("มานี"),
				FirstnameEN: ptr("Manee"),
				LastnameEN:  ptr("Meena"),
			}},
			{Source: models.SourceRocket, Data: &models.RocketMember{Fullname: ptr("Other Person")}},
		}

		m := placeholderMember("0899999999", sources)

		assert.True(t, m.IsMigratedOnly)
		assert.Nil(t, m.CustomerRef)
		assert.Nil(t, m.AccountStatus)
		assert.Equal(t, "มานี", *m.FirstnameTH)
		// Food Story has no Thai last name, so Rocket fills it.
		assert.Equal(t, "Person", *m.LastnameTH)
		assert.Equal(t, "Manee", *m.FirstnameEN)
		assert.Len(t, m.MigratedSources, 2)
	})

	t.Run("blank food story names fall through", func(t *testing.T) {
		sources := []models.MigratedSource{
			{Source: models.SourceFoodStory, Data: &models.FoodStoryMember{FirstnameTH: ptr(" ")}},
			{Source: models.SourceRocket, Data: &models.RocketMember{Fullname: ptr("สมศรี ดีใจ")}},
		}

		m := placeholderMember("0899999999", sources)

		assert.Equal(t, "สมศรี", *m.FirstnameTH)
		assert.Equal(t, "ดีใจ", *m.LastnameTH)
		assert.Nil(t, m.FirstnameEN)
	})
}

func TestSynthesizeTierMovements(t *testing.T) {
	sources := []models.MigratedSource{
		{Source: models.SourceFoodStory, Data: &models.FoodStoryMember{TierName: ptr("Gold"), TierID: ptr(int64(2))}},
		{Source: models.SourceRocket, Data: &models.RocketMember{TierName: ptr("")}},
	}

	movements := synthesizeTierMovements(sources)

	require.Len(t, movements, 1)
	assert.Equal(t, "Food Story (Migrated)", *movements[0].LoyaltyProgramName)
	assert.Equal(t, "Migrated", *movements[0].TierGroupName)
	assert.Equal(t, int64(2), *movements[0].TierID)
	assert.Nil(t, movements[0].ExpiredDate)

	assert.Empty(t, synthesizeTierMovements(nil))
}

func TestFirstSuccessful(t *testing.T) {
	logger := zap.NewNop()
	var calls []string

	tier := func(name string, rows []int, err error) queryTier[int] {
		return queryTier[int]{name: name, run: func(context.Context) ([]int, error) {
			calls = append(calls, name)
			return rows, err
		}}
	}

	t.Run("empty result stops the chain", func(t *testing.T) {
		calls = nil
		rows, err := firstSuccessful(context.Background(), logger, "test", []queryTier[int]{
			tier("a", []int{}, nil),
			tier("b", []int{1}, nil),
		})

		assert.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, []string{"a"}, calls)
	})

	t.Run("errors advance the chain", func(t *testing.T) {
		calls = nil
		rows, err := firstSuccessful(context.Background(), logger, "test", []queryTier[int]{
			tier("a", nil, errBoom),
			tier("b", nil, errBoom),
			tier("c", []int{3}, nil),
		})

		assert.NoError(t, err)
		assert.Equal(t, []int{3}, rows)
		assert.Equal(t, []string{"a", "b", "c"}, calls)
	})

	t.Run("exhaustion joins errors", func(t *testing.T) {
		calls = nil
		_, err := firstSuccessful(context.Background(), logger, "test", []queryTier[int]{
			tier("a", nil, errBoom),
			tier("b", nil, errBoom),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "a: boom")
		assert.Contains(t, err.Error(), "b: boom")
	})
}
