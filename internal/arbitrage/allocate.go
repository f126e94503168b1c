package arbitrage

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// MinStake is the smallest currency unit a plan can carry.
const MinStake = 0.01

var cent = decimal.New(1, -2)

// Allocate splits totalStake across picks in proportion to each pick's implied
// probability so every outcome returns the same amount. totalStake must be a
// whole number of cents; it is never rounded. Stakes are rounded to cents and
// the rounding residual goes to the largest stake (the first one on ties), so
// the stakes always sum exactly to totalStake. Payouts and the guaranteed
// return are computed from the rounded stakes.
func Allocate(picks []domain.Pick, totalStake float64) (domain.StakePlan, error) {
	if math.IsNaN(totalStake) || math.IsInf(totalStake, 0) {
		return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonNonFiniteStake}
	}
	if totalStake <= 0 {
		return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonNonPositiveStake}
	}
	total := decimal.NewFromFloat(totalStake)
	if total.LessThan(cent) {
		return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonStakeTooSmall}
	}
	if !total.Equal(total.Round(2)) {
		return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonSubCentStake}
	}
	if len(picks) == 0 {
		return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonNoPicks}
	}

	seen := make(map[string]struct{}, len(picks))
	var implied float64
	for _, p := range picks {
		if !validOdds(p.Odds) {
			return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonMalformedOdds}
		}
		if _, dup := seen[p.Outcome]; dup {
			return domain.StakePlan{}, &InvalidStakeError{Reason: ReasonDuplicateOutcome}
		}
		seen[p.Outcome] = struct{}{}
		implied += p.ImpliedProbability()
	}

	totalF := total.InexactFloat64()
	stakes := make([]decimal.Decimal, len(picks))
	for i, p := range picks {
		nominal := totalF * p.ImpliedProbability() / implied
		// Round rounds half away from zero.
		stakes[i] = decimal.NewFromFloat(nominal).Round(2)
	}
	reconcile(stakes, total)

	plan := domain.StakePlan{
		TotalStake:              totalF,
		TotalImpliedProbability: implied,
		Allocations:             make([]domain.Allocation, len(picks)),
	}

	var minPayout decimal.Decimal
	for i, p := range picks {
		payout := stakes[i].Mul(decimal.NewFromFloat(p.Odds))
		if i == 0 || payout.LessThan(minPayout) {
			minPayout = payout
		}
		plan.Allocations[i] = domain.Allocation{
			Outcome:         p.Outcome,
			Bookmaker:       p.Bookmaker,
			Odds:            p.Odds,
			Stake:           stakes[i].InexactFloat64(),
			PotentialPayout: payout.InexactFloat64(),
		}
	}

	profit := minPayout.Sub(total)
	plan.GuaranteedReturn = minPayout.InexactFloat64()
	plan.GuaranteedProfit = profit.InexactFloat64()
	plan.ProfitPercentage = profit.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return plan, nil
}

// reconcile adds the rounding residual to the largest stake. When the residual
// would drive that stake negative (many legs on a stake of a few cents) the
// excess is taken a cent at a time from the other stakes in order.
func reconcile(stakes []decimal.Decimal, total decimal.Decimal) {
	sum := decimal.Zero
	largest := 0
	for i, s := range stakes {
		sum = sum.Add(s)
		if s.GreaterThan(stakes[largest]) {
			largest = i
		}
	}
	stakes[largest] = stakes[largest].Add(total.Sub(sum))
	if !stakes[largest].IsNegative() {
		return
	}
	debt := stakes[largest].Neg()
	stakes[largest] = decimal.Zero
	for debt.IsPositive() {
		for i := range stakes {
			if debt.IsZero() {
				break
			}
			if stakes[i].IsPositive() {
				stakes[i] = stakes[i].Sub(cent)
				debt = debt.Sub(cent)
			}
		}
	}
}
