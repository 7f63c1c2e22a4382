// Package persona classifies a household into one of sixteen spending
// personas by comparing its consumption structure against the KOSTAT
// Household Income and Expenditure Trends benchmark (2024 Q3, tables 5-6).
package persona

// COICOP-like category keys used by the benchmark tables.
const (
	CatFoodNonAlcoholic      = "food_non_alcoholic"
	CatAlcoholTobacco        = "alcohol_tobacco"
	CatClothingFootwear      = "clothing_footwear"
	CatHousingUtilities      = "housing_utilities"
	CatHouseholdGoods        = "household_goods_services"
	CatHealth                = "health"
	CatTransport             = "transport"
	CatCommunication         = "communication"
	CatRecreationCulture     = "recreation_culture"
	CatEducation             = "education"
	CatRestaurantsHotels     = "restaurants_hotels"
	CatOtherGoodsServices    = "other_goods_services"
)

// COICOPCategories fixes the vector ordering for share and similarity math.
var COICOPCategories = []string{
	CatFoodNonAlcoholic,
	CatAlcoholTobacco,
	CatClothingFootwear,
	CatHousingUtilities,
	CatHouseholdGoods,
	CatHealth,
	CatTransport,
	CatCommunication,
	CatRecreationCulture,
	CatEducation,
	CatRestaurantsHotels,
	CatOtherGoodsServices,
}

// QuintileBenchmark holds one income quintile of the KOSTAT tables,
// converted from thousand won to won.
type QuintileBenchmark struct {
	Income                  float64
	DisposableIncome        float64
	AvgPropensityToConsume  float64 // percent
	ConsumptionTotal        float64
	Categories              map[string]float64
}

// benchmark2024Q3 is indexed by quintile 1..5.
var benchmark2024Q3 = map[int]QuintileBenchmark{
	1: {
		Income:                 1_182_000,
		DisposableIncome:       962_000,
		AvgPropensityToConsume: 134.7,
		ConsumptionTotal:       1_296_000,
		Categories: map[string]float64{
			CatFoodNonAlcoholic:   293_000,
			CatAlcoholTobacco:     29_000,
			CatClothingFootwear:   38_000,
			CatHousingUtilities:   235_000,
			CatHouseholdGoods:     49_000,
			CatHealth:             151_000,
			CatTransport:          91_000,
			CatCommunication:      52_000,
			CatRecreationCulture:  77_000,
			CatEducation:          26_000,
			CatRestaurantsHotels:  173_000,
			CatOtherGoodsServices: 83_000,
		},
	},
	2: {
		Income:                 2_823_000,
		DisposableIncome:       2_367_000,
		AvgPropensityToConsume: 78.2,
		ConsumptionTotal:       1_852_000,
		Categories: map[string]float64{
			CatFoodNonAlcoholic:   325_000,
			CatAlcoholTobacco:     35_000,
			CatClothingFootwear:   65_000,
			CatHousingUtilities:   289_000,
			CatHouseholdGoods:     75_000,
			CatHealth:             185_000,
			CatTransport:          168_000,
			CatCommunication:      90_000,
			CatRecreationCulture:  123_000,
			CatEducation:          63_000,
			CatRestaurantsHotels:  298_000,
			CatOtherGoodsServices: 136_000,
		},
	},
	3: {
		Income:                 4_362_000,
		DisposableIncome:       3_524_000,
		AvgPropensityToConsume: 76.3,
		ConsumptionTotal:       2_689_000,
		Categories: map[string]float64{
			CatFoodNonAlcoholic:   411_000,
			CatAlcoholTobacco:     43_000,
			CatClothingFootwear:   109_000,
			CatHousingUtilities:   334_000,
			CatHouseholdGoods:     126_000,
			CatHealth:             227_000,
			CatTransport:          272_000,
			CatCommunication:      127_000,
			CatRecreationCulture:  193_000,
			CatEducation:          194_000,
			CatRestaurantsHotels:  456_000,
			CatOtherGoodsServices: 196_000,
		},
	},
	4: {
		Income:                 6_360_000,
		DisposableIncome:       5_100_000,
		AvgPropensityToConsume: 71.6,
		ConsumptionTotal:       3_653_000,
		Categories: map[string]float64{
			CatFoodNonAlcoholic:   515_000,
			CatAlcoholTobacco:     43_000,
			CatClothingFootwear:   144_000,
			CatHousingUtilities:   357_000,
			CatHouseholdGoods:     149_000,
			CatHealth:             286_000,
			CatTransport:          493_000,
			CatCommunication:      168_000,
			CatRecreationCulture:  243_000,
			CatEducation:          379_000,
			CatRestaurantsHotels:  593_000,
			CatOtherGoodsServices: 283_000,
		},
	},
	5: {
		Income:                 11_543_000,
		DisposableIncome:       8_981_000,
		AvgPropensityToConsume: 56.2,
		ConsumptionTotal:       5_045_000,
		Categories: map[string]float64{
			CatFoodNonAlcoholic:   626_000,
			CatAlcoholTobacco:     51_000,
			CatClothingFootwear:   216_000,
			CatHousingUtilities:   417_000,
			CatHouseholdGoods:     241_000,
			CatHealth:             397_000,
			CatTransport:          536_000,
			CatCommunication:      189_000,
			CatRecreationCulture:  492_000,
			CatEducation:          602_000,
			CatRestaurantsHotels:  818_000,
			CatOtherGoodsServices: 460_000,
		},
	},
}

// benchmarkShare returns each quintile's category share vector.
func benchmarkShare(q int) map[string]float64 {
	b := benchmark2024Q3[q]
	out := make(map[string]float64, len(COICOPCategories))
	for _, c := range COICOPCategories {
		out[c] = b.Categories[c] / b.ConsumptionTotal
	}
	return out
}
