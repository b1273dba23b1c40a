// Package guidelines implements the underwriting rule engine: ordered,
// short-circuiting rule sets resolved per product variant. Evaluation turns
// a product-data payload into an ordered list of breach codes; an empty list
// means the quote is compliant and may proceed to pricing.
package guidelines

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Predicate reports whether a rule fires for the given payload. Predicates
// are pure except for the debt-check adapter, which is the engine's one
// declared external dependency.
type Predicate func(ctx context.Context, data models.ProductData) (bool, error)

// Rule pairs a breach code with its firing predicate. A short-circuit rule
// that fires stops evaluation of the remaining rules in the same set only;
// other sets still run in full.
type Rule struct {
	Code         models.BreachCode
	ShortCircuit bool
	Applies      Predicate
}

// RuleSet is an ordered list of rules evaluated in declaration order.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Evaluate runs the set's rules in order and returns the codes of every rule
// that fired, stopping early after a firing short-circuit rule.
func (s RuleSet) Evaluate(ctx context.Context, data models.ProductData) ([]models.BreachCode, error) {
	var breaches []models.BreachCode
	for _, r := range s.Rules {
		fired, err := r.Applies(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("rule set %s, rule %s: %w", s.Name, r.Code, err)
		}
		if !fired {
			continue
		}
		breaches = append(breaches, r.Code)
		if r.ShortCircuit {
			break
		}
	}
	return breaches, nil
}

// Registry resolves the rule sets for each product variant: a market-level
// personal set composed with a product-level set. It is immutable after
// construction and passed by reference; no package-level state.
type Registry struct {
	sets map[models.ProductVariant][]RuleSet
	now  func() time.Time
}

// NewRegistry builds the rule-set registry. The debt-check collaborator is
// wired into the Swedish personal rules; now is the clock used by age rules
// (nil means time.Now).
func NewRegistry(debt collaborators.DebtCheck, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}

	swedishPersonal := swedishPersonalRules(debt, now)
	norwegianPersonal := norwegianPersonalRules(now)
	danishPersonal := danishPersonalRules(now)

	return &Registry{
		now: now,
		sets: map[models.ProductVariant][]RuleSet{
			models.VariantSwedishApartment:      {swedishPersonal, swedishApartmentRules(now)},
			models.VariantSwedishHouse:          {swedishPersonal, swedishHouseRules()},
			models.VariantNorwegianHomeContents: {norwegianPersonal, norwegianHomeContentsRules(now)},
			models.VariantNorwegianTravel:       {norwegianPersonal, norwegianTravelRules(now)},
			models.VariantDanishHomeContents:    {danishPersonal, danishHomeContentsRules(now)},
			models.VariantDanishAccident:        {danishPersonal, danishAccidentRules(now)},
			models.VariantDanishTravel:          {danishPersonal, danishTravelRules(now)},
		},
	}
}

// Evaluate runs every rule set registered for the payload's variant, in
// registration order, and concatenates their breach lists. A short-circuit
// in one set never suppresses another set. A collaborator failure inside a
// rule propagates as an error; breaches themselves are values.
func (r *Registry) Evaluate(ctx context.Context, data models.ProductData) ([]models.BreachCode, error) {
	data.MustValidate()
	sets, ok := r.sets[data.Variant]
	if !ok {
		panic(fmt.Sprintf("guidelines: no rule sets registered for variant %q", data.Variant))
	}

	breaches := []models.BreachCode{}
	for _, s := range sets {
		found, err := s.Evaluate(ctx, data)
		if err != nil {
			return nil, err
		}
		breaches = append(breaches, found...)
	}
	return breaches, nil
}

// Variants returns the variants the registry covers, for totality tests.
func (r *Registry) Variants() []models.ProductVariant {
	out := make([]models.ProductVariant, 0, len(r.sets))
	for v := range r.sets {
		out = append(out, v)
	}
	return out
}

// pure lifts a side-effect-free predicate into a Predicate.
func pure(fn func(data models.ProductData) bool) Predicate {
	return func(_ context.Context, data models.ProductData) (bool, error) {
		return fn(data), nil
	}
}

// age returns full years between birth and now.
func age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
