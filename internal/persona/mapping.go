package persona

import "strings"

// categoryToCOICOP maps the user-facing category labels found in bank
// exports to the benchmark's COICOP-like keys.
var categoryToCOICOP = map[string]string{
	"식비":    CatFoodNonAlcoholic,
	"커피/디저트": CatRestaurantsHotels,
	"카페":    CatRestaurantsHotels,
	"외식":    CatRestaurantsHotels,
	"음식":    CatRestaurantsHotels,

	"주거/통신": CatHousingUtilities,
	"주거":    CatHousingUtilities,
	"공과금":   CatHousingUtilities,
	"관리비":   CatHousingUtilities,
	"통신":    CatCommunication,
	"구독":    CatOtherGoodsServices,

	"교통": CatTransport,
	"차량": CatTransport,

	"패션/쇼핑": CatClothingFootwear,
	"쇼핑":    CatClothingFootwear,
	"패션":    CatClothingFootwear,

	"의료/건강": CatHealth,
	"의료":    CatHealth,
	"건강":    CatHealth,

	"문화/여가": CatRecreationCulture,
	"취미":    CatRecreationCulture,
	"여행":    CatRecreationCulture,
	"오락":    CatRecreationCulture,

	"교육": CatEducation,

	"생활":  CatHouseholdGoods,
	"생필품": CatHouseholdGoods,
	"기타":  CatOtherGoodsServices,
	"선물":  CatOtherGoodsServices,

	"주류/담배": CatAlcoholTobacco,
	"술":     CatAlcoholTobacco,
	"담배":    CatAlcoholTobacco,
}

// MapToCOICOP maps a user category to its benchmark key. Unknown or empty
// categories fall into other goods and services.
func MapToCOICOP(category string) string {
	if c, ok := categoryToCOICOP[strings.TrimSpace(category)]; ok {
		return c
	}
	return CatOtherGoodsServices
}
