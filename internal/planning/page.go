package planning

import (
	"encoding/json"
	"time"
)

// Page kinds. Each tenant has at most one page per kind; the page's Fields
// blob holds that kind's items with no per-item schema enforcement.
const (
	KindBudgetItems = "budget_items"
	KindVendors     = "vendors"
	KindGuests      = "guests"
	KindTasks       = "tasks"
)

// Page is a tenant-scoped schemaless record. Version guards every write:
// a save carrying a stale version is rejected instead of silently
// overwriting a concurrent writer's change.
type Page struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	TenantID uint64 `gorm:"not null;uniqueIndex:uniq_tenant_kind,priority:1" json:"-"`
	Kind     string `gorm:"type:varchar(32);not null;uniqueIndex:uniq_tenant_kind,priority:2" json:"kind"`
	Fields   string `gorm:"type:text;not null" json:"-"`
	Version  int64  `gorm:"not null" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Page) TableName() string { return "planning_pages" }

type BudgetItem struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Vendor     string `json:"vendor,omitempty"`
	TotalCost  int64  `json:"totalCost"`  // minor units
	AmountPaid int64  `json:"amountPaid"` // minor units
	Notes      string `json:"notes,omitempty"`
}

type Vendor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"` // free-form: researching/contacted/booked/...
	Cost     int64  `json:"cost,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Guest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Side string `json:"side,omitempty"`
	RSVP string `json:"rsvp,omitempty"`
}

type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Due   string `json:"due,omitempty"`
	Done  bool   `json:"done"`
}

// DecodeItems unmarshals the page blob into dst (a pointer to a slice).
// An empty blob decodes to an empty slice.
func (p *Page) DecodeItems(dst any) error {
	if p.Fields == "" {
		return nil
	}
	return json.Unmarshal([]byte(p.Fields), dst)
}

// EncodeItems replaces the page blob with items.
func (p *Page) EncodeItems(items any) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	p.Fields = string(b)
	return nil
}
