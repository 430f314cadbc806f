package models

import (
	"testing"
	"time"
)

func TestAnnouncementVisibleAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	cases := []struct {
		name string
		ann  Announcement
		want bool
	}{
		{"inactive", Announcement{Active: false}, false},
		{"active unbounded", Announcement{Active: true}, true},
		{"inside window", Announcement{Active: true, StartsAt: &before, EndsAt: &after}, true},
		{"not started", Announcement{Active: true, StartsAt: &after}, false},
		{"already ended", Announcement{Active: true, EndsAt: &before}, false},
		{"open ended start", Announcement{Active: true, StartsAt: &before}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.ann.VisibleAt(now); got != c.want {
				t.Errorf("VisibleAt = %v, want %v", got, c.want)
			}
		})
	}
}
