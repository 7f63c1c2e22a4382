package persona

// Style and level identifiers. A persona key is "L{level}_{style}".
const (
	StyleImpulse   = "impulse"
	StyleEmotional = "emotional"
	StyleStable    = "stable"
	StyleStrategic = "strategic"
)

// styleOrder fixes the tie-break order when style scores are equal: the
// earlier style wins.
var styleOrder = []string{StyleImpulse, StyleEmotional, StyleStable, StyleStrategic}

// Card is the displayable description of one persona.
type Card struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Animal   string `json:"animal"`
	Level    string `json:"level"`
	Style    string `json:"style"`
	CoachHint string `json:"coach_hint"`
}

// catalog is the 4x4 level-by-style persona set.
var catalog = map[string]Card{
	"L1_impulse":   {Key: "L1_impulse", Title: "🔥 오늘만 사는 불나방형", Subtitle: "지금의 기분이 예산보다 먼저예요.", Animal: "여우", Level: "L1", Style: StyleImpulse, CoachHint: "공감+아주 작은 규칙부터"},
	"L1_emotional": {Key: "L1_emotional", Title: "🎀 감정 따라 지갑여는 요정형", Subtitle: "기분 전환이 소비로 연결돼요.", Animal: "토끼", Level: "L1", Style: StyleEmotional, CoachHint: "감정 트리거→대체 행동 제안"},
	"L1_stable":    {Key: "L1_stable", Title: "🏠 현실은 알지만 약한 마음형", Subtitle: "알지만 흔들리는 순간이 있어요.", Animal: "곰", Level: "L1", Style: StyleStable, CoachHint: "현실적 상한+경보 규칙 강조"},
	"L1_strategic": {Key: "L1_strategic", Title: "📉 계획은 세우는 즉흥러형", Subtitle: "플랜은 있는데 실행이 흔들려요.", Animal: "강아지", Level: "L1", Style: StyleStrategic, CoachHint: "루틴을 초간단으로"},

	"L2_impulse":   {Key: "L2_impulse", Title: "🛍 기분파 쇼핑러형", Subtitle: "필요보다 '예쁨'이 먼저예요.", Animal: "고양이", Level: "L2", Style: StyleImpulse, CoachHint: "주간 상한/보류 규칙"},
	"L2_emotional": {Key: "L2_emotional", Title: "☕ 소확행 수집가형", Subtitle: "작은 행복이 자주 쌓여요.", Animal: "햄스터", Level: "L2", Style: StyleEmotional, CoachHint: "카페/소확행 예산을 주간으로"},
	"L2_stable":    {Key: "L2_stable", Title: "🍱 월급 지키는 생활러형", Subtitle: "생활비를 안정적으로 관리해요.", Animal: "거북이", Level: "L2", Style: StyleStable, CoachHint: "고정비 최적화/자동화"},
	"L2_strategic": {Key: "L2_strategic", Title: "📒 기록은 하지만 흔들리는 플래너형", Subtitle: "기록은 성실한데 가끔 삐끗해요.", Animal: "판다", Level: "L2", Style: StyleStrategic, CoachHint: "기록→규칙 자동화로 연결"},

	"L3_impulse":   {Key: "L3_impulse", Title: "🎯 가끔 폭주하는 실속러형", Subtitle: "대체로 실속, 가끔 큰 한 방.", Animal: "아기호랑이", Level: "L3", Style: StyleImpulse, CoachHint: "폭주만 차단(단건/주간 경보)"},
	"L3_emotional": {Key: "L3_emotional", Title: "✈️ 경험을 사랑하는 여행가형", Subtitle: "경험에 투자하는 타입이에요.", Animal: "펭귄", Level: "L3", Style: StyleEmotional, CoachHint: "경험 예산은 살리고 최적화"},
	"L3_stable":    {Key: "L3_stable", Title: "🧱 철벽 예산러형", Subtitle: "흔들리지 않는 한도 관리.", Animal: "고슴도치", Level: "L3", Style: StyleStable, CoachHint: "유지 전략 + 미세 조정"},
	"L3_strategic": {Key: "L3_strategic", Title: "📈 자산 키우는 준비생형", Subtitle: "지출을 자산으로 바꾸는 중.", Animal: "다람쥐", Level: "L3", Style: StyleStrategic, CoachHint: "저축/목표 트래킹"},

	"L4_impulse":   {Key: "L4_impulse", Title: "🎲 계산된 일탈러형", Subtitle: "일탈도 예산 안에서 즐겨요.", Animal: "늑대", Level: "L4", Style: StyleImpulse, CoachHint: "일탈 예산 슬롯 분리"},
	"L4_emotional": {Key: "L4_emotional", Title: "💎 가치소비 큐레이터형", Subtitle: "비싸도 납득되면 OK.", Animal: "백조", Level: "L4", Style: StyleEmotional, CoachHint: "가치 소비 체크리스트"},
	"L4_stable":    {Key: "L4_stable", Title: "🏦 현금흐름 지배자형", Subtitle: "흐름을 통제하는 안정감.", Animal: "코끼리", Level: "L4", Style: StyleStable, CoachHint: "현금흐름/비상금 최적화"},
	"L4_strategic": {Key: "L4_strategic", Title: "👑 재무 마스터형", Subtitle: "전체 구조를 설계하는 타입.", Animal: "사자", Level: "L4", Style: StyleStrategic, CoachHint: "목표 기반 예산/리밸런싱"},
}

// Lookup returns the card for a persona key.
func Lookup(key string) (Card, bool) {
	c, ok := catalog[key]
	return c, ok
}
