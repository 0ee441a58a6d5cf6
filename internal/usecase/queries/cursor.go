package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
	CursorVersionV1  = "v1"
)

var ErrInvalidCursor = errs.Mark(errs.New("invalid cursor"), errs.ErrValidation)

type Cursor struct {
	After string `json:"after,omitempty"`
}

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	data := CursorVersionV1 + ":" + strconv.FormatInt(t.UnixMicro(), 10) + "-" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(data))
}

func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	if cursor == "" {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor is not base64url"), ErrInvalidCursor)
	}
	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "unknown cursor version")
	}

	micros, rawID, ok := strings.Cut(payload, "-")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "expected '<micros>-<uuid>'")
	}
	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "invalid cursor timestamp"), ErrInvalidCursor)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "invalid cursor id"), ErrInvalidCursor)
	}

	return time.UnixMicro(ts).UTC(), id, nil
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// KeysetPage is the (createdAt, id) position after which a page starts. The
// zero value means the first page.
type KeysetPage struct {
	AfterCreatedAt time.Time
	AfterID        uuid.UUID
	Limit          int
}

func (p KeysetPage) IsFirst() bool {
	return p.AfterID == uuid.Nil
}

// pageFromCursor decodes cursor and asks the store for one extra row so the
// caller can tell whether another page exists.
func pageFromCursor(cursor *Cursor, limit int) (KeysetPage, int, error) {
	limit = ValidateLimit(limit)
	page := KeysetPage{Limit: limit + 1}
	if cursor == nil || cursor.After == "" {
		return page, limit, nil
	}
	t, id, err := DecodeAfterCursor(cursor.After)
	if err != nil {
		return KeysetPage{}, 0, err
	}
	page.AfterCreatedAt, page.AfterID = t, id
	return page, limit, nil
}

// trimPage cuts the lookahead row and builds the next cursor from the last
// returned item.
func trimPage[T any](rows []T, limit int, key func(T) (time.Time, uuid.UUID)) ([]T, *Cursor) {
	if len(rows) <= limit {
		return rows, nil
	}
	t, id := key(rows[limit-1])
	return rows[:limit], &Cursor{After: EncodeAfterCursor(t, id)}
}
