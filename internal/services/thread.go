package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

// ThreadEntry is one node of a resolved thread together with its latest PRD revision
// and the child-version index of its parent.
type ThreadEntry struct {
	ConversationID   uuid.UUID               `json:"conversation_id"`
	SessionID        int64                   `json:"session_id"`
	CreatedAt        time.Time               `json:"created_at"`
	ConversationType types.ConversationType  `json:"conversation_type"`
	Content          string                  `json:"content"`
	Version          int                     `json:"version"`
	ParentID         *uuid.UUID              `json:"conversation_parent_id"`
	ParentVersions   types.ChildVersionIndex `json:"conversation_para_version"`
	KnowledgeGraph   *string                 `json:"knowledge_graph"`
	FuncDescription  *string                 `json:"dify_func_des"`
	KnowledgeID      *string                 `json:"knowledge_id"`
	ExternalRefID    *string                 `json:"dify_id"`
	PreviewCode      *string                 `json:"preview_code"`
	PRDContent       *string                 `json:"prd_content"`
	PRDVersion       *int                    `json:"prd_version"`
	Latest           *bool                   `json:"latest"`
	RestoreVersion   *int                    `json:"restore_version"`
}

func newThreadEntry(c *types.Conversation, parentIndex types.ChildVersionIndex, prd *types.PRD) ThreadEntry {
	e := ThreadEntry{
		ConversationID:   c.ID,
		SessionID:        c.SessionID,
		CreatedAt:        c.CreatedAt,
		ConversationType: c.Type,
		Content:          c.Content,
		Version:          c.Version,
		ParentID:         c.ParentID,
		ParentVersions:   parentIndex,
		KnowledgeGraph:   c.KnowledgeGraph,
		FuncDescription:  c.FuncDescription,
		KnowledgeID:      c.KnowledgeID,
		ExternalRefID:    c.ExternalRefID,
		PreviewCode:      c.PreviewCode,
	}
	if prd != nil {
		content, version, latest := prd.Content, prd.Version, prd.Latest
		e.PRDContent = &content
		e.PRDVersion = &version
		e.Latest = &latest
		e.RestoreVersion = prd.RestoreVersion
	}
	return e
}

// Thread resolves the active branch of a session.
//
// With a start node the walk first follows the highest child version from it down to a
// leaf; without one it begins at the most recently created node. From there it climbs
// parent links to the root. Entries come back oldest first. A missing session or a start
// node outside the session yields an empty thread.
func (cs *conversationService) Thread(ctx context.Context, sessionID int64, start *uuid.UUID) ([]ThreadEntry, error) {
	const op = "Conversation.Thread"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	dbc := dbctx.Context{Ctx: ctx}
	sess, err := cs.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return []ThreadEntry{}, nil
	}
	if sess.UserID != userID {
		return nil, forbidden(op, "session belongs to another user")
	}

	nodes, err := cs.convRepo.ListBySession(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(nodes) == 0 {
		return []ThreadEntry{}, nil
	}
	byID := make(map[uuid.UUID]*types.Conversation, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var tip *types.Conversation
	if start != nil && *start != uuid.Nil {
		first, ok := byID[*start]
		if !ok {
			return []ThreadEntry{}, nil
		}
		tip = cs.descend(first, byID)
	} else {
		// nodes is ordered by (created_at, conversation_id).
		tip = nodes[len(nodes)-1]
	}

	chain := cs.ascend(tip, byID)
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].CreatedAt.Before(chain[j].CreatedAt)
	})

	ids := make([]uuid.UUID, 0, len(chain))
	for _, c := range chain {
		ids = append(ids, c.ID)
	}
	prds, err := cs.prdRepo.LatestForConversations(dbc, sessionID, ids)
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}

	out := make([]ThreadEntry, 0, len(chain))
	for _, c := range chain {
		var parentIndex types.ChildVersionIndex
		if c.ParentID != nil {
			if p, ok := byID[*c.ParentID]; ok {
				parentIndex = p.ChildVersions
			}
		}
		out = append(out, newThreadEntry(c, parentIndex, prds[c.ID]))
	}
	return out, nil
}

// descend follows the highest child version until a leaf, a dangling entry or a
// node already visited.
func (cs *conversationService) descend(from *types.Conversation, byID map[uuid.UUID]*types.Conversation) *types.Conversation {
	visited := map[uuid.UUID]bool{from.ID: true}
	cur := from
	for {
		version, next, skipped := cur.ChildVersions.Latest()
		if len(skipped) > 0 {
			cs.log.Warn("ignoring malformed child version keys", "conversation_id", cur.ID, "keys", skipped)
		}
		if next == uuid.Nil {
			return cur
		}
		child, ok := byID[next]
		if !ok {
			cs.log.Warn("child version points outside the session", "conversation_id", cur.ID, "version", version, "child_id", next)
			return cur
		}
		if visited[child.ID] {
			cs.log.Warn("cycle in child versions", "conversation_id", cur.ID, "child_id", child.ID)
			return cur
		}
		visited[child.ID] = true
		cur = child
	}
}

// ascend returns tip and its ancestors, root first.
func (cs *conversationService) ascend(tip *types.Conversation, byID map[uuid.UUID]*types.Conversation) []*types.Conversation {
	var chain []*types.Conversation
	visited := map[uuid.UUID]bool{}
	for cur := tip; cur != nil && !visited[cur.ID]; {
		visited[cur.ID] = true
		chain = append(chain, cur)
		if cur.ParentID == nil {
			break
		}
		parent, ok := byID[*cur.ParentID]
		if !ok {
			cs.log.Warn("parent missing from session", "conversation_id", cur.ID, "parent_id", *cur.ParentID)
			break
		}
		if visited[parent.ID] {
			cs.log.Warn("cycle in parent links", "conversation_id", cur.ID, "parent_id", parent.ID)
			break
		}
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
