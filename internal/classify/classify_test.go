package classify

import (
	"errors"
	"testing"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

func header() []string {
	return []string{"날짜", "시간", "구분", "대분류", "내용", "금액", "결제수단"}
}

func TestClassifyExhaustivePartition(t *testing.T) {
	rows := [][]string{
		{"2025-03-01", "12:30", "지출", "식비", "김밥천국", "-12000", "카드"},
		{"2025-03-02", "", "수입", "", "회사 급여", "2500000", ""},
		{"2025-03-03", "09:00", "이체", "", "토스 김철수 송금", "-50000", "토스"},
		{"2025-03-04", "", "", "쇼핑", "온라인 구매", "-30000", "카카오페이"},
		{"2025-03-05", "", "", "", "", "15000", ""},
	}

	res, err := Classify(header(), rows)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(res.Transactions) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(res.Transactions))
	}

	for i, tx := range res.Transactions {
		if !tx.Kind.Valid() {
			t.Errorf("row %d: invalid kind %q", i, tx.Kind)
		}
	}

	wantKinds := []core.Kind{
		core.KindExpense,
		core.KindIncome,
		core.KindTransfer,
		core.KindExpense, // "구매" keyword in description
		core.KindIncome,  // positive sign fallback
	}
	for i, want := range wantKinds {
		if got := res.Transactions[i].Kind; got != want {
			t.Errorf("row %d: kind = %q, want %q", i, got, want)
		}
	}
}

func TestClassifyMissingRequiredColumn(t *testing.T) {
	_, err := Classify([]string{"날짜", "내용"}, [][]string{{"2025-03-01", "x"}})

	var schemaErr *core.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "amount" {
		t.Errorf("SchemaError.Column = %q, want amount", schemaErr.Column)
	}
}

func TestClassifyDropsBadRowsButKeepsRest(t *testing.T) {
	rows := [][]string{
		{"not-a-date", "", "지출", "식비", "a", "-1000", ""},
		{"2025-03-01", "", "지출", "식비", "b", "garbage", ""},
		{"2025-03-02", "", "지출", "식비", "c", "-2000", ""},
	}

	res, err := Classify(header(), rows)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.DroppedDates != 1 || res.DroppedAmounts != 1 {
		t.Errorf("dropped = (%d dates, %d amounts), want (1, 1)",
			res.DroppedDates, res.DroppedAmounts)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(res.Transactions))
	}
	if res.Transactions[0].Description != "c" {
		t.Errorf("wrong surviving row: %+v", res.Transactions[0])
	}
}

func TestClassifyAllRowsBadIsFatal(t *testing.T) {
	rows := [][]string{
		{"bad", "", "", "", "", "bad", ""},
	}
	_, err := Classify(header(), rows)
	if !errors.Is(err, core.ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestClassifyHourHandling(t *testing.T) {
	rows := [][]string{
		{"2025-03-01", "23:15", "지출", "식비", "a", "-1000", ""},
		{"2025-03-01", "23:15:42", "지출", "식비", "b", "-1000", ""},
		{"2025-03-01", "", "지출", "식비", "c", "-1000", ""},
	}

	res, err := Classify(header(), rows)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if !res.Transactions[0].HasHour || res.Transactions[0].Hour != 23 {
		t.Errorf("row 0: hour = (%d, %v), want (23, true)",
			res.Transactions[0].Hour, res.Transactions[0].HasHour)
	}
	if !res.Transactions[1].HasHour || res.Transactions[1].Hour != 23 {
		t.Errorf("row 1: HH:MM:SS layout not parsed")
	}
	if res.Transactions[2].HasHour {
		t.Error("row 2: missing time must not default to hour 0")
	}
}

func TestClassifyCategoryFallback(t *testing.T) {
	rows := [][]string{
		{"2025-03-01", "", "지출", "", "a", "-1000", ""},
	}
	res, err := Classify(header(), rows)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got := res.Transactions[0].Category; got != core.UncategorizedLabel {
		t.Errorf("category = %q, want %q", got, core.UncategorizedLabel)
	}
}

func TestInferKindPriorityOrder(t *testing.T) {
	tests := []struct {
		name      string
		typeField string
		desc      string
		amount    float64
		want      core.Kind
	}{
		{"transfer beats income keyword", "이체", "급여 이체", -100, core.KindTransfer},
		{"transfer in description", "", "friend transfer", -100, core.KindTransfer},
		{"income keyword", "수입", "", -100, core.KindIncome},
		{"english salary", "", "monthly salary", -100, core.KindIncome},
		{"expense keyword", "지출", "", 100, core.KindExpense},
		{"negative sign fallback", "", "", -100, core.KindExpense},
		{"positive sign fallback", "", "", 100, core.KindIncome},
		{"zero amount fallback", "", "", 0, core.KindIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferKind(tt.typeField, tt.desc, tt.amount); got != tt.want {
				t.Errorf("inferKind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnonymizeDescription(t *testing.T) {
	transfer := core.Transaction{
		Kind:        core.KindTransfer,
		Category:    core.UncategorizedLabel,
		Description: "토스 김철수",
	}
	if got := anonymizeDescription(transfer); got != "이체" {
		t.Errorf("transfer anonymization = %q, want 이체", got)
	}

	income := core.Transaction{Kind: core.KindIncome, Description: "회사 급여 3월분"}
	if got := anonymizeDescription(income); got != core.IncomeDescriptionLabel {
		t.Errorf("income anonymization = %q, want %q", got, core.IncomeDescriptionLabel)
	}

	expense := core.Transaction{Kind: core.KindExpense, Description: "김밥천국"}
	if got := anonymizeDescription(expense); got != "김밥천국" {
		t.Errorf("expense description must be untouched, got %q", got)
	}
}
