package convo

import "time"

const KindOnboarding = "onboarding"

type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"conversation_id"`
	TenantID       uint64    `gorm:"index;not null" json:"-"`
	Kind           string    `gorm:"type:varchar(32);not null" json:"kind"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(26);not null;index:idx_convo_msg_tenant_convo,priority:2" json:"conversation_id"`
	TenantID       uint64    `gorm:"not null;index:idx_convo_msg_tenant_convo,priority:1" json:"-"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "conversation_messages" }
