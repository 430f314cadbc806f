// internal/app/system/paging/paging.go

// Package paging implements keyset (cursor) pagination for list endpoints.
// Cursors encode the sort key plus ObjectID of the boundary row, so pages
// stay stable while documents are inserted or removed.
package paging

import (
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows returned by paged list endpoints.
const PageSize = 20

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Cursors extracts the "before"/"after" cursor query parameters.
func Cursors(r *http.Request) (before, after string) {
	return query.Get(r, "before"), query.Get(r, "after")
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a slice fetched with PageSize+1 rows, in place, and returns
// the pagination indicators.
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

// Direction indicates the pagination direction relative to the sort order.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// KeysetConfig holds the decoded cursor and direction for one request.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 ascending, -1 descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset determines pagination direction and decodes the cursor.
// baseOrder is the natural sort order of the listing (1 for name-ascending
// directories, -1 for newest-first feeds); paging backwards flips it.
func ConfigureKeyset(before, after string, baseOrder int) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: baseOrder}

	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -baseOrder
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}

	return cfg
}

// ApplyToFind configures sort and look-ahead limit on FindOptions.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// KeysetWindow returns the cursor condition for the query filter, or nil when
// no cursor is set.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.SortOrder < 0 {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// ApplyToFindID configures an _id-only sort and look-ahead limit, for
// listings in insertion order (ObjectIDs are time-ordered).
func (cfg KeysetConfig) ApplyToFindID(find *options.FindOptions) {
	find.SetSort(bson.D{{Key: "_id", Value: cfg.SortOrder}}).SetLimit(LimitPlusOne())
}

// IDWindow returns the _id-only cursor condition, or nil when no cursor is
// set.
func (cfg KeysetConfig) IDWindow() bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "$gt"
	if cfg.SortOrder < 0 {
		dir = "$lt"
	}
	return bson.M{"_id": bson.M{dir: cfg.Cursor.ID}}
}

// Reverse restores display order after paging backwards.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last rows.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}
