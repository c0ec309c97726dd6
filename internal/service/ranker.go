package service

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"hotelix/internal/model"
	"hotelix/internal/utils"
)

// Factor weights and thresholds. Other components and tests depend on these exact values.
const (
	WeightPrice     = 30.0
	WeightRating    = 25.0
	WeightAmenities = 20.0
	WeightReviews   = 15.0
	WeightQuality   = 10.0

	neutralPrice     = 15.0
	overBudgetScore  = -5.0
	neutralAmenities = 10.0

	reviewsHighCount = 100
	reviewsMidCount  = 50
	reviewsMidScore  = 10.0
	reviewsLowScore  = 5.0
)

// Match reason constants
const (
	ReasonWithinBudget = "Within budget"
	ReasonOverBudget   = "Over budget"
	ReasonTopRated     = "Top rated"
	ReasonAmenityMatch = "Amenities match"
	ReasonPopular      = "Many reviews"
	ReasonGeneralMatch = "General match"
)

// Ranker scores offers against a session's preferences
type Ranker struct {
	logger *zap.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *zap.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank scores every offer and returns copies sorted by score, highest first.
// Equal scores keep their input order. The input slice is not modified.
func (r *Ranker) Rank(offers []model.HotelOffer, prefs model.Preferences) []model.ScoredOffer {
	results := make([]model.ScoredOffer, 0, len(offers))
	wanted := utils.NormalizeAmenities(prefs.Preferences)

	for i, offer := range offers {
		results = append(results, r.scoreSafely(i, offer, prefs.BudgetMax, wanted))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// scoreSafely scores one offer; a panic neutralizes that offer instead of the batch
func (r *Ranker) scoreSafely(index int, offer model.HotelOffer, budget *float64, wanted []string) (result model.ScoredOffer) {
	offer.Amenities = append([]string{}, offer.Amenities...)
	result = model.ScoredOffer{HotelOffer: offer, MatchedReasons: []string{}}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Scoring failed, offer neutralized",
				zap.Int("index", index),
				zap.String("hotel_id", offer.HotelID),
				zap.String("panic", fmt.Sprint(rec)))
			result.Score = 0
			result.Breakdown = model.ScoreBreakdown{}
			result.MatchedReasons = []string{}
		}
	}()

	r10 := rating10(offer.Rating)
	matched := matchedAmenities(offer.Amenities, wanted)

	result.Breakdown = model.ScoreBreakdown{
		Price:     priceScore(offer.Price, budget),
		Rating:    r10 * (WeightRating / 10),
		Amenities: amenityScore(offer.Amenities, wanted, len(matched)),
		Reviews:   reviewScore(offer.RatingCount),
		Quality:   qualityBonus(r10),
	}
	result.Score = result.Breakdown.Total()
	result.MatchedReasons = matchedReasons(result.Breakdown, budget, r10, matched, offer.RatingCount)
	return result
}

// priceScore rewards offers cheaper relative to the budget. No budget is neutral.
func priceScore(price *float64, budget *float64) float64 {
	if budget == nil || *budget <= 0 {
		return neutralPrice
	}
	limit := *budget
	p := 0.0
	if price != nil {
		p = *price
	}
	if p <= limit {
		return WeightPrice * (1 - p/limit)
	}
	return overBudgetScore
}

// rating10 maps a 0-5 rating to 0-10
func rating10(rating *float64) float64 {
	if rating == nil {
		return 0
	}
	r := *rating * 2
	switch {
	case r < 0:
		return 0
	case r > 10:
		return 10
	default:
		return r
	}
}

func amenityScore(offered, wanted []string, matched int) float64 {
	if len(offered) == 0 || len(wanted) == 0 {
		return neutralAmenities
	}
	return WeightAmenities * float64(matched) / float64(len(wanted))
}

func reviewScore(count int) float64 {
	switch {
	case count > reviewsHighCount:
		return WeightReviews
	case count > reviewsMidCount:
		return reviewsMidScore
	default:
		return reviewsLowScore
	}
}

func qualityBonus(r10 float64) float64 {
	switch {
	case r10 >= 9.0:
		return WeightQuality
	case r10 >= 8.5:
		return 7
	case r10 >= 8.0:
		return 3
	default:
		return 0
	}
}

// matchedAmenities returns the wanted amenities the offer has, in wanted order
func matchedAmenities(offered, wanted []string) []string {
	if len(offered) == 0 || len(wanted) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(offered))
	for _, a := range utils.NormalizeAmenities(offered) {
		have[a] = struct{}{}
	}
	var matched []string
	for _, w := range wanted {
		if _, ok := have[w]; ok {
			matched = append(matched, w)
		}
	}
	return matched
}

// matchedReasons generates human-readable reasons for why this offer ranked
func matchedReasons(b model.ScoreBreakdown, budget *float64, r10 float64, matched []string, reviews int) []string {
	reasons := []string{}

	if budget != nil && *budget > 0 {
		if b.Price >= 0 {
			reasons = append(reasons, ReasonWithinBudget)
		} else {
			reasons = append(reasons, ReasonOverBudget)
		}
	}
	if r10 >= 8.0 {
		reasons = append(reasons, ReasonTopRated)
	}
	if len(matched) > 0 {
		reasons = append(reasons, ReasonAmenityMatch+": "+strings.Join(matched, ", "))
	}
	if reviews > reviewsHighCount {
		reasons = append(reasons, ReasonPopular)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}
