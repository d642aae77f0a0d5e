package planning

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Page{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestSave_StaleVersionRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	page, err := repo.GetOrCreate(ctx, 1, KindBudgetItems)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if err := page.EncodeItems([]BudgetItem{
		{ID: "a", Category: "florals", Vendor: "Bloom & Co", TotalCost: 120000},
		{ID: "b", Category: "cake", Vendor: "The Cake Shop", TotalCost: 45000},
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := repo.Save(ctx, page); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	// two writers read the same version
	w1, _ := repo.GetOrCreate(ctx, 1, KindBudgetItems)
	w2, _ := repo.GetOrCreate(ctx, 1, KindBudgetItems)

	var items1 []BudgetItem
	_ = w1.DecodeItems(&items1)
	_ = w1.EncodeItems(items1[:1]) // delete "b"
	if err := repo.Save(ctx, w1); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}

	var items2 []BudgetItem
	_ = w2.DecodeItems(&items2)
	_ = w2.EncodeItems(items2[1:]) // delete "a" off the stale read
	err = repo.Save(ctx, w2)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("second stale write must fail fast, got err=%v", err)
	}

	// persisted state reflects the first deletion only
	final, _ := repo.GetOrCreate(ctx, 1, KindBudgetItems)
	var got []BudgetItem
	if err := final.DecodeItems(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected final items: %+v", got)
	}
}

func TestGetOrCreate_EmptyPageDecodes(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	page, err := repo.GetOrCreate(context.Background(), 5, KindVendors)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	var vendors []Vendor
	if err := page.DecodeItems(&vendors); err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(vendors) != 0 {
		t.Fatalf("expected no vendors")
	}
}

func TestAnalyzeGaps_CaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	page, _ := repo.GetOrCreate(ctx, 1, KindVendors)
	_ = page.EncodeItems([]Vendor{
		{ID: "v1", Name: "Quinta do Vale", Category: "Venue", Status: "booked"},
		{ID: "v2", Name: "Petal Pushers", Category: "florals", Status: "Confirmed"},
		{ID: "v3", Name: "DJ Atlas", Category: "music", Status: "contacted"},
	})
	if err := repo.Save(ctx, page); err != nil {
		t.Fatalf("save: %v", err)
	}

	gaps, err := AnalyzeGaps(ctx, repo, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	byCat := map[string]bool{}
	for _, g := range gaps {
		byCat[g.Category] = true
	}
	if byCat["venue"] {
		t.Fatalf("Venue/booked must count as booked")
	}
	if byCat["florals"] {
		t.Fatalf("florals/Confirmed must count as booked")
	}
	if !byCat["music"] {
		t.Fatalf("contacted is not booked; music gap expected")
	}
	if !byCat["catering"] || !byCat["photography"] {
		t.Fatalf("missing gaps for unbooked categories: %v", byCat)
	}
}
