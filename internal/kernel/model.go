package kernel

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a []string column stored as JSON text.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("kernel: cannot scan %T into StringList", src)
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, (*[]string)(l))
}

// Contains reports exact membership.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Kernel is the canonical per-tenant fact record, created lazily on the
// first conversational turn and only ever grown from there.
type Kernel struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	TenantID uint64 `gorm:"uniqueIndex;not null" json:"-"`

	PartnerNames StringList `gorm:"type:text" json:"partner_names"`
	DisplayName  string     `gorm:"type:varchar(128)" json:"display_name"`

	WeddingDate   *time.Time `json:"wedding_date"`
	Location      string     `gorm:"type:varchar(255)" json:"location"`
	GuestCount    int        `json:"guest_count"`
	BudgetTotal   int64      `json:"budget_total"` // minor currency units
	PlanningPhase string     `gorm:"type:varchar(64)" json:"planning_phase"`
	Tone          string     `gorm:"type:varchar(32)" json:"tone"`

	Vibe        StringList `gorm:"type:text" json:"vibe"`
	Priorities  StringList `gorm:"type:text" json:"priorities"`
	Occupations StringList `gorm:"type:text" json:"occupations"`
	Stressors   StringList `gorm:"type:text" json:"stressors"`

	OnboardingStep     int  `json:"onboarding_step"` // 0..7, never decreases
	OnboardingComplete bool `json:"onboarding_complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Kernel) TableName() string { return "kernels" }

// FinalStep is the terminal onboarding state.
const FinalStep = 7
