package repository

import (
	"encoding/base64"
	"strings"
	"time"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cursor is the position after the last row of a page. Rows are ordered by
// (CreatedAt, ID); feed cursors also carry the pinned flag.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
	Pinned    *bool
}

// Encode renders the cursor as opaque base64url text.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	if c.Pinned != nil {
		if *c.Pinned {
			raw += "|1"
		} else {
			raw += "|0"
		}
	}
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by Encode. An empty string yields nil.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, models.NewValidationError("invalid cursor")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	c := &Cursor{CreatedAt: ts.UTC(), ID: id}
	if len(parts) == 3 {
		switch parts[2] {
		case "1":
			c.Pinned = boolPtr(true)
		case "0":
			c.Pinned = boolPtr(false)
		default:
			return nil, models.NewValidationError("invalid cursor")
		}
	}
	return c, nil
}

func boolPtr(b bool) *bool { return &b }

// applyCursor filters rows strictly after c in (created_at, id) order. desc
// selects newest-first pagination.
func applyCursor(q *gorm.DB, table string, c *Cursor, desc bool) *gorm.DB {
	if c == nil {
		return q
	}
	op := ">"
	if desc {
		op = "<"
	}
	createdAt := table + ".created_at"
	id := table + ".id"
	return q.Where(
		"("+createdAt+" "+op+" ?) OR ("+createdAt+" = ? AND "+id+" "+op+" ?)",
		c.CreatedAt, c.CreatedAt, c.ID,
	)
}

// applyFeedCursor continues a feed ordered by (is_pinned DESC, created_at DESC, id DESC).
func applyFeedCursor(q *gorm.DB, c *Cursor) *gorm.DB {
	if c == nil {
		return q
	}
	within := "(posts.created_at < ?) OR (posts.created_at = ? AND posts.id < ?)"
	if c.Pinned != nil && *c.Pinned {
		return q.Where("posts.is_pinned = ? OR (posts.is_pinned = ? AND ("+within+"))",
			false, true, c.CreatedAt, c.CreatedAt, c.ID)
	}
	return q.Where("posts.is_pinned = ? AND ("+within+")", false, c.CreatedAt, c.CreatedAt, c.ID)
}
