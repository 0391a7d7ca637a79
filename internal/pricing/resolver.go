package pricing

import (
	"sort"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// Scope weights. An offer scope always outranks a channel scope, which always
// outranks a tour scope.
const (
	weightOffer   = 3
	weightChannel = 2
	weightTour    = 1
)

// SellContext identifies where and what is being sold.
type SellContext struct {
	Channel string
	OfferID string
}

// Specificity scores how narrowly a policy is scoped.
func Specificity(p catalog.PricingPolicy) int {
	score := 0
	if p.Scope.OfferID != nil {
		score += weightOffer
	}
	if p.Scope.Channel != nil {
		score += weightChannel
	}
	if p.Scope.TourID != nil {
		score += weightTour
	}
	return score
}

// Matches reports whether the policy applies to the sell context. An equal
// offer scope matches regardless of its other fields. Without an offer scope
// an equal channel matches. Otherwise only a global policy matches, so a
// scope naming just a tour contributes to ranking but never applies.
func Matches(p catalog.PricingPolicy, sc SellContext) bool {
	switch {
	case p.Scope.OfferID != nil:
		return *p.Scope.OfferID == sc.OfferID
	case p.Scope.Channel != nil:
		return *p.Scope.Channel == sc.Channel
	default:
		return p.Scope.Global()
	}
}

// ResolvePolicy selects the single applicable policy for the sell context.
// Inactive policies are ignored. Candidates are ranked by Specificity and ties
// keep input order, so the first matching policy of the highest rank wins.
// The boolean is false when nothing applies, which means no markup.
func ResolvePolicy(policies []catalog.PricingPolicy, sc SellContext) (catalog.PricingPolicy, bool) {
	active := make([]catalog.PricingPolicy, 0, len(policies))
	for _, p := range policies {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return Specificity(active[i]) > Specificity(active[j])
	})
	for _, p := range active {
		if Matches(p, sc) {
			return p, true
		}
	}
	return catalog.PricingPolicy{}, false
}
