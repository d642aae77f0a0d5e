package analytics

import (
	"context"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestInsert_DuplicateEventIDDetectable(t *testing.T) {
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	repo := NewRepo(db)
	ctx := context.Background()

	e := &Event{
		EventID:    "01TESTEVENT000000000000000",
		SessionID:  "sess-1",
		EventType:  "page_view",
		Page:       "/venues",
		OccurredAt: time.Now(),
	}
	if err := repo.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	exists, err := repo.Exists(ctx, e.EventID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected event to be found")
	}

	// redelivered message with the same id must be rejected by the index
	dup := &Event{EventID: e.EventID, SessionID: "sess-1", EventType: "page_view", OccurredAt: time.Now()}
	if err := repo.Insert(ctx, dup); err == nil {
		t.Fatalf("duplicate insert should fail on the unique index")
	}
}
