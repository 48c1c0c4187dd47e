package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes who authored a conversation node.
type Type int

const (
	TypeUserMessage   Type = 0
	TypeModelResponse Type = 1
)

func (t Type) Valid() bool {
	return t == TypeUserMessage || t == TypeModelResponse
}

func (t Type) String() string {
	switch t {
	case TypeUserMessage:
		return "user_message"
	case TypeModelResponse:
		return "model_response"
	default:
		return "unknown"
	}
}

// Conversation is one node of a session's conversation tree.
//
// Version is the node's rank among its siblings; roots are always 1.
// ChildVersions is written only through AllocateVersion.
type Conversation struct {
	ID              uuid.UUID         `gorm:"column:conversation_id;type:uuid;primaryKey" json:"conversation_id"`
	SessionID       int64             `gorm:"column:session_id;not null;index" json:"session_id"`
	CreatedAt       time.Time         `gorm:"column:created_at;not null;index" json:"created_at"`
	Type            Type              `gorm:"column:conversation_type;not null" json:"conversation_type"`
	Content         string            `gorm:"column:content;type:text;not null" json:"content"`
	Version         int               `gorm:"column:version;not null;uniqueIndex:idx_conversation_parent_version,priority:2" json:"version"`
	ParentID        *uuid.UUID        `gorm:"column:conversation_parent_id;type:uuid;uniqueIndex:idx_conversation_parent_version,priority:1" json:"conversation_parent_id"`
	ChildVersions   ChildVersionIndex `gorm:"column:conversation_child_version;type:text" json:"conversation_child_version"`
	KnowledgeGraph  *string           `gorm:"column:knowledge_graph;type:text" json:"knowledge_graph"`
	FuncDescription *string           `gorm:"column:dify_func_des;type:text" json:"dify_func_des"`
	KnowledgeID     *string           `gorm:"column:knowledge_id" json:"knowledge_id"`
	ExternalRefID   *string           `gorm:"column:dify_id" json:"dify_id"`
	PreviewCode     *string           `gorm:"column:preview_code;type:text" json:"preview_code"`
}

func (Conversation) TableName() string { return "conversations" }

// IsRoot reports whether the node has no parent.
func (c *Conversation) IsRoot() bool {
	return c == nil || c.ParentID == nil || *c.ParentID == uuid.Nil
}

// AuxFields is the mutable metadata of a node. A nil pointer leaves the column untouched.
type AuxFields struct {
	KnowledgeGraph  *string
	FuncDescription *string
	KnowledgeID     *string
	ExternalRefID   *string
	PreviewCode     *string
}

func (a AuxFields) Empty() bool {
	return a.KnowledgeGraph == nil &&
		a.FuncDescription == nil &&
		a.KnowledgeID == nil &&
		a.ExternalRefID == nil &&
		a.PreviewCode == nil
}

// Updates returns the column map for the supplied fields.
func (a AuxFields) Updates() map[string]interface{} {
	out := map[string]interface{}{}
	if a.KnowledgeGraph != nil {
		out["knowledge_graph"] = *a.KnowledgeGraph
	}
	if a.FuncDescription != nil {
		out["dify_func_des"] = *a.FuncDescription
	}
	if a.KnowledgeID != nil {
		out["knowledge_id"] = *a.KnowledgeID
	}
	if a.ExternalRefID != nil {
		out["dify_id"] = *a.ExternalRefID
	}
	if a.PreviewCode != nil {
		out["preview_code"] = *a.PreviewCode
	}
	return out
}

// Apply copies the supplied fields onto c.
func (a AuxFields) Apply(c *Conversation) {
	if c == nil {
		return
	}
	if a.KnowledgeGraph != nil {
		c.KnowledgeGraph = a.KnowledgeGraph
	}
	if a.FuncDescription != nil {
		c.FuncDescription = a.FuncDescription
	}
	if a.KnowledgeID != nil {
		c.KnowledgeID = a.KnowledgeID
	}
	if a.ExternalRefID != nil {
		c.ExternalRefID = a.ExternalRefID
	}
	if a.PreviewCode != nil {
		c.PreviewCode = a.PreviewCode
	}
}
