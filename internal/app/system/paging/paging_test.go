package paging

import (
	"testing"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestTrimPageForward(t *testing.T) {
	rows := makeRows(PageSize + 1)
	res := TrimPage(&rows, "", "")
	if len(rows) != PageSize {
		t.Fatalf("len = %d, want %d", len(rows), PageSize)
	}
	if !res.HasNext || res.HasPrev {
		t.Errorf("HasNext=%v HasPrev=%v, want next only", res.HasNext, res.HasPrev)
	}
}

func TestTrimPageForwardLastPage(t *testing.T) {
	rows := makeRows(5)
	res := TrimPage(&rows, "", "cursor")
	if len(rows) != 5 {
		t.Fatalf("len = %d, want 5", len(rows))
	}
	if res.HasNext {
		t.Error("HasNext = true on a short page")
	}
	if !res.HasPrev {
		t.Error("HasPrev = false when paging after a cursor")
	}
}

func TestTrimPageBackward(t *testing.T) {
	rows := makeRows(PageSize + 1)
	res := TrimPage(&rows, "cursor", "")
	if len(rows) != PageSize {
		t.Fatalf("len = %d, want %d", len(rows), PageSize)
	}
	if rows[0] != 1 {
		t.Errorf("first row = %d, want the leading look-ahead row dropped", rows[0])
	}
	if !res.HasPrev || !res.HasNext {
		t.Errorf("HasPrev=%v HasNext=%v, want both", res.HasPrev, res.HasNext)
	}
}

func TestConfigureKeysetDirections(t *testing.T) {
	id := primitive.NewObjectID()
	cur := wafflemongo.EncodeCursor("key", id)

	fwd := ConfigureKeyset("", cur, 1)
	if fwd.Direction != Forward || fwd.SortOrder != 1 {
		t.Errorf("forward: direction=%v order=%d", fwd.Direction, fwd.SortOrder)
	}
	if fwd.Cursor == nil || fwd.Cursor.ID != id {
		t.Error("forward: cursor not decoded")
	}

	back := ConfigureKeyset(cur, "", 1)
	if back.Direction != Backward || back.SortOrder != -1 {
		t.Errorf("backward: direction=%v order=%d", back.Direction, back.SortOrder)
	}

	feed := ConfigureKeyset("", "", -1)
	if feed.SortOrder != -1 {
		t.Errorf("newest-first base order = %d, want -1", feed.SortOrder)
	}
	feedBack := ConfigureKeyset(cur, "", -1)
	if feedBack.SortOrder != 1 {
		t.Errorf("newest-first backward order = %d, want 1", feedBack.SortOrder)
	}
}

func TestIDWindow(t *testing.T) {
	id := primitive.NewObjectID()
	cur := wafflemongo.EncodeCursor("", id)

	cfg := ConfigureKeyset("", cur, -1)
	window := cfg.IDWindow()
	if window == nil {
		t.Fatal("window is nil with a cursor set")
	}
	cond, ok := window["_id"].(bson.M)
	if !ok {
		t.Fatalf("window[_id] has type %T", window["_id"])
	}
	if got, ok := cond["$lt"]; !ok || got != id {
		t.Errorf("window = %v, want $lt %s", window, id.Hex())
	}

	if empty := (KeysetConfig{}).IDWindow(); empty != nil {
		t.Errorf("window without cursor = %v, want nil", empty)
	}
}

func TestReverse(t *testing.T) {
	rows := []int{1, 2, 3}
	Reverse(rows)
	if rows[0] != 3 || rows[2] != 1 {
		t.Errorf("Reverse = %v", rows)
	}
}
