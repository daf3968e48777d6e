package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedtime/deposit-engine/engine"
)

func standardTiers() engine.TierSchedule {
	return engine.TierSchedule{
		{UpperBound: moneyPtr(50000), Margin: engine.NewPercent(8)},
		{UpperBound: moneyPtr(499000), Margin: engine.NewPercent(7)},
		{UpperBound: nil, Margin: engine.NewPercent(6.5)},
	}
}

func TestTierSchedule_Resolve_InclusiveUpperBounds(t *testing.T) {
	// GIVEN: The standard card with bounds at 50,000 and 499,000
	// WHEN:  Amounts on and around the boundaries are resolved
	// THEN:  An amount exactly at a bound belongs to the LOWER band

	base := engine.NewPercent(20.66)
	tiers := standardTiers()

	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero balance uses first band", 0, "12.66"},
		{"inside first band", 10000, "12.66"},
		{"exactly at first bound stays in first band", 50000, "12.66"},
		{"just above first bound moves to middle band", 50001, "13.66"},
		{"exactly at second bound stays in middle band", 499000, "13.66"},
		{"above second bound uses the unbounded band", 500000, "14.16"},
		{"very large balance uses the unbounded band", 25000000, "14.16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := tiers.Resolve(money(tt.amount), base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate.StringFixed2())
		})
	}
}

func TestTierSchedule_Resolve_NegativeAmount_Rejected(t *testing.T) {
	_, err := standardTiers().Resolve(money(-1), engine.NewPercent(20.66))
	assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
}

func TestTierSchedule_Resolve_MarginAboveBase_GoesNegative(t *testing.T) {
	// A margin exceeding the base rate yields a negative client rate.
	// Unusual but a valid card; the resolver does not clamp.
	tiers := engine.TierSchedule{{UpperBound: nil, Margin: engine.NewPercent(5)}}
	rate, err := tiers.Resolve(money(100), engine.NewPercent(2))
	require.NoError(t, err)
	assert.Equal(t, "-3.00", rate.StringFixed2())
}

func TestTierSchedule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tiers   engine.TierSchedule
		wantErr bool
	}{
		{"standard card", standardTiers(), false},
		{"single unbounded tier", engine.TierSchedule{
			{UpperBound: nil, Margin: engine.NewPercent(2)},
		}, false},
		{"empty schedule", engine.TierSchedule{}, true},
		{"final tier bounded", engine.TierSchedule{
			{UpperBound: moneyPtr(50000), Margin: engine.NewPercent(8)},
		}, true},
		{"unbounded tier not last", engine.TierSchedule{
			{UpperBound: nil, Margin: engine.NewPercent(8)},
			{UpperBound: nil, Margin: engine.NewPercent(7)},
		}, true},
		{"bounds not ascending", engine.TierSchedule{
			{UpperBound: moneyPtr(499000), Margin: engine.NewPercent(7)},
			{UpperBound: moneyPtr(50000), Margin: engine.NewPercent(8)},
			{UpperBound: nil, Margin: engine.NewPercent(6.5)},
		}, true},
		{"duplicate bounds overlap", engine.TierSchedule{
			{UpperBound: moneyPtr(50000), Margin: engine.NewPercent(8)},
			{UpperBound: moneyPtr(50000), Margin: engine.NewPercent(7)},
			{UpperBound: nil, Margin: engine.NewPercent(6.5)},
		}, true},
		{"negative margin", engine.TierSchedule{
			{UpperBound: nil, Margin: engine.NewPercent(-1)},
		}, true},
		{"zero bound", engine.TierSchedule{
			{UpperBound: moneyPtr(0), Margin: engine.NewPercent(8)},
			{UpperBound: nil, Margin: engine.NewPercent(7)},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tiers.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
