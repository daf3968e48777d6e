/*
Package factory provides JSON rate-card to engine configuration conversion.

PURPOSE:
  Converts JSON rate-card definitions into engine.Config values. This
  enables card configuration without code changes - operations staff can
  adjust the base rate and margin bands in JSON, and the factory produces
  the validated Go configuration.

JSON SCHEMA:
  {
    "client_name": "Ada Obi",
    "account_number": "0011223344",
    "base_rate": 20.66,
    "tenor_days": 365,
    "tiers": [
      {"up_to": 50000, "margin": 2},
      {"up_to": 499000, "margin": 3},
      {"margin": 4}
    ]
  }

  A tier without "up_to" is the final, unbounded band. Bounds are
  inclusive: a balance exactly at a bound takes the lower band's margin.

KEY FEATURES:
  - Validates structure and delegates semantic checks to engine.Config
  - Default() mirrors the original product card (base 20.66, margins
    2/3/4 at the 50,000 and 499,000 bounds)
  - WithDefaults fills unset fields from a defaults card

USAGE:
  f := factory.NewRateCardFactory()
  cfg, err := f.Parse(jsonStr)
  rows, totals, err := engine.Run(txs, cfg)

SEE ALSO:
  - engine/rate.go:  TierSchedule semantics
  - config/config.go: YAML server defaults reusing these types
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/seedtime/deposit-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RateCardJSON is the wire representation of a statement configuration.
// The yaml tags let the server's defaults file reuse the same shape.
type RateCardJSON struct {
	ClientName    string     `json:"client_name,omitempty" yaml:"client_name,omitempty"`
	AccountNumber string     `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	BaseRate      float64    `json:"base_rate" yaml:"base_rate"`
	TenorDays     int        `json:"tenor_days" yaml:"tenor_days"`
	Tiers         []TierJSON `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

// TierJSON is one margin band. A nil UpTo marks the unbounded final band.
type TierJSON struct {
	UpTo   *float64 `json:"up_to,omitempty" yaml:"up_to,omitempty"`
	Margin float64  `json:"margin" yaml:"margin"`
}

// Default returns the original product card: base rate 20.66% p.a. with
// margins 2/3/4 at the 50,000 and 499,000 bounds, one-year tenor.
func Default() RateCardJSON {
	upper := func(v float64) *float64 { return &v }
	return RateCardJSON{
		BaseRate:  20.66,
		TenorDays: 365,
		Tiers: []TierJSON{
			{UpTo: upper(50000), Margin: 2},
			{UpTo: upper(499000), Margin: 3},
			{Margin: 4},
		},
	}
}

// WithDefaults returns a copy of the card with unset fields filled from d.
func (c RateCardJSON) WithDefaults(d RateCardJSON) RateCardJSON {
	out := c
	if out.BaseRate == 0 {
		out.BaseRate = d.BaseRate
	}
	if out.TenorDays == 0 {
		out.TenorDays = d.TenorDays
	}
	if len(out.Tiers) == 0 {
		out.Tiers = d.Tiers
	}
	return out
}

// =============================================================================
// RATE CARD FACTORY
// =============================================================================

// RateCardFactory converts JSON rate cards to engine configurations.
type RateCardFactory struct{}

// NewRateCardFactory creates a new rate card factory.
func NewRateCardFactory() *RateCardFactory {
	return &RateCardFactory{}
}

// Parse converts a JSON string to a validated engine.Config.
func (f *RateCardFactory) Parse(jsonStr string) (engine.Config, error) {
	var card RateCardJSON
	if err := json.Unmarshal([]byte(jsonStr), &card); err != nil {
		return engine.Config{}, fmt.Errorf("failed to parse rate card JSON: %w", err)
	}
	return f.Build(card)
}

// Build converts a card to a validated engine.Config.
func (f *RateCardFactory) Build(card RateCardJSON) (engine.Config, error) {
	tiers := make(engine.TierSchedule, len(card.Tiers))
	for i, t := range card.Tiers {
		tier := engine.Tier{Margin: engine.NewPercent(t.Margin)}
		if t.UpTo != nil {
			bound := engine.NewMoney(*t.UpTo)
			tier.UpperBound = &bound
		}
		tiers[i] = tier
	}

	cfg := engine.Config{
		BaseRate:      engine.NewPercent(card.BaseRate),
		Tiers:         tiers,
		TenorDays:     card.TenorDays,
		ClientName:    card.ClientName,
		AccountNumber: card.AccountNumber,
	}
	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// MarshalCard renders a card back to its canonical JSON string, as stored
// alongside a statement session.
func MarshalCard(card RateCardJSON) (string, error) {
	data, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rate card: %w", err)
	}
	return string(data), nil
}

// ParseCard decodes the stored JSON form without building a config.
func ParseCard(jsonStr string) (RateCardJSON, error) {
	var card RateCardJSON
	if err := json.Unmarshal([]byte(jsonStr), &card); err != nil {
		return RateCardJSON{}, fmt.Errorf("failed to parse rate card JSON: %w", err)
	}
	return card, nil
}
