package persona

import (
	"fmt"
	"math"
	"strings"

	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// Result is the inferred persona plus the evidence behind it.
type Result struct {
	PersonaKey       string             `json:"persona_key"`
	Card             Card               `json:"card"`
	EstimatedIncome  int64              `json:"estimated_income"`
	QuintileProbs    map[int]float64    `json:"quintile_probs"`
	ExpectedQuintile float64            `json:"expected_quintile"`
	Signals          map[string]float64 `json:"signals"`
	CategoryShare    map[string]float64 `json:"category_share"`
}

// InferFromSummary derives the persona from an analysis summary alone: the
// expected income picks the nearest benchmark quintile, the behavioral
// metrics and top-category keywords pick the style.
func InferFromSummary(s analysis.Summary) Result {
	var income float64
	if s.Income.Available {
		income = s.Income.Expected
	}

	nearestQ := 3
	if income > 0 {
		bestDiff := math.Inf(1)
		for q := 1; q <= 5; q++ {
			diff := math.Abs(benchmark2024Q3[q].Income - income)
			if diff < bestDiff {
				bestDiff = diff
				nearestQ = q
			}
		}
	}

	probs := make(map[int]float64, 5)
	for q := 1; q <= 5; q++ {
		if q == nearestQ {
			probs[q] = 1
		} else {
			probs[q] = 0
		}
	}

	exp := s.Expense
	spendRatio := metricValue(exp.SpendRatio)
	easyPay := metricValue(exp.EasyPayRatio)
	fixedRatio := metricValue(exp.FixedCostRatio)

	var topCats []string
	for _, ca := range exp.TopCategories5 {
		topCats = append(topCats, ca.Category)
	}

	emotionalHit := keywordHit(topCats, "카페", "커피", "디저트", "문화", "여가", "여행", "오락", "취미")
	impulseHit := keywordHit(topCats, "쇼핑", "패션", "뷰티", "온라인쇼핑")
	stableHit := keywordHit(topCats, "주거", "공과금", "관리비", "통신", "생필품", "생활")
	strategicHit := keywordHit(topCats, "교육", "저축", "보험", "투자")

	scores := map[string]float64{
		StyleImpulse:   easyPay*0.6 + exp.LateRatio*0.4 + impulseHit*0.6 + math.Max(0, spendRatio-0.75),
		StyleEmotional: exp.SmallTxRatio*0.4 + emotionalHit*0.8 + exp.LateRatio*0.2,
		StyleStable:    fixedRatio*0.8 + stableHit*0.6 + math.Max(0, 0.6-spendRatio)*0.2,
		StyleStrategic: strategicHit*0.7 + math.Max(0, 0.7-spendRatio)*0.8 + math.Max(0, 0.5-exp.LateRatio)*0.3,
	}
	style := topStyle(scores)

	estimated := int64(income)
	if estimated <= 0 {
		estimated = int64(benchmark2024Q3[nearestQ].Income)
	}

	key := personaKey(float64(nearestQ), style)
	card, _ := Lookup(key)

	share := make(map[string]float64, len(COICOPCategories))
	for _, c := range COICOPCategories {
		share[c] = 0
	}

	return Result{
		PersonaKey:       key,
		Card:             card,
		EstimatedIncome:  estimated,
		QuintileProbs:    probs,
		ExpectedQuintile: float64(nearestQ),
		Signals: map[string]float64{
			"expected_quintile":    float64(nearestQ),
			"nearest_quintile":     float64(nearestQ),
			"spend_ratio":          spendRatio,
			"late_ratio":           exp.LateRatio,
			"small_tx_ratio":       exp.SmallTxRatio,
			"easy_pay_ratio":       easyPay,
			"fixed_cost_ratio_est": fixedRatio,
			"impulse_score":        scores[StyleImpulse],
			"emotional_score":      scores[StyleEmotional],
			"stable_score":         scores[StyleStable],
			"strategic_score":      scores[StyleStrategic],
		},
		CategoryShare: share,
	}
}

// InferFromTransactions derives the persona from classified rows: the
// category share vector is matched against each quintile's benchmark share
// by cosine similarity, softmaxed into quintile probabilities.
func InferFromTransactions(rows []core.Transaction) Result {
	share := buildCOICOPShare(rows)

	userVec := shareVector(share)
	sims := make([]float64, 5)
	for q := 1; q <= 5; q++ {
		sims[q-1] = cosine(userVec, shareVector(benchmarkShare(q)))
	}
	probsVec := softmax(sims, 10)

	probs := make(map[int]float64, 5)
	var expectedQ float64
	for q := 1; q <= 5; q++ {
		probs[q] = probsVec[q-1]
		expectedQ += float64(q) * probsVec[q-1]
	}

	var estimated float64
	for q := 1; q <= 5; q++ {
		estimated += probs[q] * benchmark2024Q3[q].Income
	}

	nearestQ := int(math.Round(expectedQ))
	if nearestQ < 1 {
		nearestQ = 1
	}
	if nearestQ > 5 {
		nearestQ = 5
	}

	volatility := monthlyVolatility(rows)
	bench := benchmarkShare(nearestQ)
	delta := func(cat string) float64 {
		return math.Max(0, share[cat]-bench[cat])
	}

	apc := benchmark2024Q3[nearestQ].AvgPropensityToConsume
	savingsHint := math.Max(0, (100-apc)/100)

	scores := map[string]float64{
		StyleImpulse:   delta(CatClothingFootwear) + delta(CatOtherGoodsServices),
		StyleEmotional: delta(CatRecreationCulture) + delta(CatRestaurantsHotels),
		StyleStable:    delta(CatHousingUtilities) + delta(CatFoodNonAlcoholic) + delta(CatCommunication),
		StyleStrategic: math.Max(0, 0.25-volatility) + savingsHint*0.5,
	}
	style := topStyle(scores)

	key := personaKey(expectedQ, style)
	card, _ := Lookup(key)

	return Result{
		PersonaKey:       key,
		Card:             card,
		EstimatedIncome:  int64(estimated),
		QuintileProbs:    probs,
		ExpectedQuintile: expectedQ,
		Signals: map[string]float64{
			"expected_quintile": expectedQ,
			"nearest_quintile":  float64(nearestQ),
			"volatility_cv":     volatility,
			"impulse_signal":    scores[StyleImpulse],
			"emotional_signal":  scores[StyleEmotional],
			"stable_signal":     scores[StyleStable],
			"strategic_signal":  scores[StyleStrategic],
			"avg_propensity_to_consume_nearest_q": apc,
		},
		CategoryShare: share,
	}
}

// personaKey combines the level derived from the expected quintile with the
// winning style.
func personaKey(expectedQuintile float64, style string) string {
	var level string
	switch {
	case expectedQuintile <= 2.0:
		level = "L1"
	case expectedQuintile <= 3.0:
		level = "L2"
	case expectedQuintile <= 4.0:
		level = "L3"
	default:
		level = "L4"
	}
	return fmt.Sprintf("%s_%s", level, style)
}

// topStyle picks the highest-scoring style; ties go to the earlier style in
// styleOrder so the result is deterministic.
func topStyle(scores map[string]float64) string {
	best := styleOrder[0]
	for _, s := range styleOrder[1:] {
		if scores[s] > scores[best] {
			best = s
		}
	}
	return best
}

// buildCOICOPShare sums expense amounts per COICOP key and normalizes to
// shares. Rows that are not expenses are ignored.
func buildCOICOPShare(rows []core.Transaction) map[string]float64 {
	sums := make(map[string]float64)
	var total float64
	for _, tx := range rows {
		if tx.Kind != core.KindExpense {
			continue
		}
		c := MapToCOICOP(tx.Category)
		sums[c] += tx.AmountAbs
		total += tx.AmountAbs
	}

	share := make(map[string]float64, len(COICOPCategories))
	for _, c := range COICOPCategories {
		if total > 0 {
			share[c] = sums[c] / total
		} else {
			share[c] = 0
		}
	}
	return share
}

func shareVector(share map[string]float64) []float64 {
	vec := make([]float64, len(COICOPCategories))
	for i, c := range COICOPCategories {
		vec[i] = share[c]
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// softmax applies a temperature-scaled softmax, shifted by the max for
// numeric stability.
func softmax(vals []float64, scale float64) []float64 {
	maxV := math.Inf(-1)
	for _, v := range vals {
		if v*scale > maxV {
			maxV = v * scale
		}
	}
	out := make([]float64, len(vals))
	var sum float64
	for i, v := range vals {
		out[i] = math.Exp(v*scale - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// monthlyVolatility is the coefficient of variation of monthly expense
// totals; zero when fewer than two months exist.
func monthlyVolatility(rows []core.Transaction) float64 {
	totals := make(map[string]float64)
	for _, tx := range rows {
		if tx.Kind != core.KindExpense {
			continue
		}
		totals[core.MonthKey(tx.Date)] += tx.AmountAbs
	}
	if len(totals) < 2 {
		return 0
	}

	var sum float64
	for _, v := range totals {
		sum += v
	}
	mean := sum / float64(len(totals))
	if mean <= 0 {
		return 0
	}

	var ss float64
	for _, v := range totals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(totals))) / mean
}

func metricValue(m analysis.Metric) float64 {
	if !m.Available {
		return 0
	}
	return m.Value
}

func keywordHit(categories []string, keywords ...string) float64 {
	if len(categories) == 0 {
		return 0
	}
	joined := strings.Join(categories, " ")
	for _, kw := range keywords {
		if strings.Contains(joined, kw) {
			return 1
		}
	}
	return 0
}
