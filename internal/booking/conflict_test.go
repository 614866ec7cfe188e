package booking

import (
	"testing"
	"time"
)

func occurrence(id string, d time.Time, start, end TimeOfDay, status Status) Occurrence {
	return Occurrence{
		ID:     id,
		RoomID: "room-1",
		Status: status,
		Interval: Interval{
			Date:  d,
			Start: start,
			End:   end,
		},
	}
}

func TestFindConflicts(t *testing.T) {
	t.Parallel()

	monday := date(2025, time.March, 3)
	tuesday := date(2025, time.March, 4)

	t.Run("only blocking statuses count", func(t *testing.T) {
		t.Parallel()

		existing := []Occurrence{
			occurrence("pending", monday, 9*60, 10*60, StatusPending),
			occurrence("approved", monday, 9*60, 10*60, StatusApproved),
			occurrence("rejected", monday, 9*60, 10*60, StatusRejected),
		}
		candidates := []Interval{{Date: monday, Start: 9 * 60, End: 10 * 60}}

		got := FindConflicts(existing, candidates, "", "", BlockingAtCreation)
		if len(got) != 1 || got[0].ID != "approved" {
			t.Fatalf("expected only the approved occurrence, got %+v", got)
		}

		got = FindConflicts(existing, candidates, "", "", BlockingAtEdit)
		if len(got) != 2 {
			t.Fatalf("expected pending and approved to block edits, got %+v", got)
		}
	})

	t.Run("excluded id and group are skipped", func(t *testing.T) {
		t.Parallel()

		member := occurrence("member", monday, 9*60, 10*60, StatusPending)
		member.GroupID = "group-1"
		sibling := occurrence("sibling", tuesday, 9*60, 10*60, StatusPending)
		sibling.GroupID = "group-1"
		outsider := occurrence("outsider", monday, 9*60, 10*60, StatusApproved)

		existing := []Occurrence{member, sibling, outsider}
		candidates := []Interval{
			{Date: monday, Start: 9 * 60, End: 10 * 60},
			{Date: tuesday, Start: 9 * 60, End: 10 * 60},
		}

		got := FindConflicts(existing, candidates, "member", "group-1", BlockingAtEdit)
		if len(got) != 1 || got[0].ID != "outsider" {
			t.Fatalf("expected only the outsider, got %+v", got)
		}
	})

	t.Run("one occurrence hit by several candidates appears once", func(t *testing.T) {
		t.Parallel()

		existing := []Occurrence{occurrence("long", monday, 8*60, 18*60, StatusApproved)}
		candidates := []Interval{
			{Date: monday, Start: 9 * 60, End: 10 * 60},
			{Date: monday, Start: 13 * 60, End: 14 * 60},
		}

		got := FindConflicts(existing, candidates, "", "", BlockingAtCreation)
		if len(got) != 1 {
			t.Fatalf("expected a single deduplicated conflict, got %d", len(got))
		}
	})

	t.Run("results ordered by date then start then id", func(t *testing.T) {
		t.Parallel()

		existing := []Occurrence{
			occurrence("b", tuesday, 9*60, 10*60, StatusApproved),
			occurrence("z", monday, 13*60, 14*60, StatusApproved),
			occurrence("a", monday, 9*60, 10*60, StatusApproved),
			occurrence("c", monday, 9*60, 10*60, StatusApproved),
		}
		candidates := []Interval{
			{Date: monday, Start: 9 * 60, End: 15 * 60},
			{Date: tuesday, Start: 9 * 60, End: 10 * 60},
		}

		got := FindConflicts(existing, candidates, "", "", BlockingAtCreation)
		var ids []string
		for _, occ := range got {
			ids = append(ids, occ.ID)
		}
		want := []string{"a", "c", "z", "b"}
		if len(ids) != len(want) {
			t.Fatalf("expected %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, ids)
			}
		}
	})

	t.Run("no candidates or no existing yields nil", func(t *testing.T) {
		t.Parallel()

		existing := []Occurrence{occurrence("a", monday, 9*60, 10*60, StatusApproved)}
		if got := FindConflicts(existing, nil, "", "", BlockingAtCreation); got != nil {
			t.Fatalf("expected nil for no candidates, got %+v", got)
		}
		if got := FindConflicts(nil, []Interval{{Date: monday, Start: 9 * 60, End: 10 * 60}}, "", "", BlockingAtCreation); got != nil {
			t.Fatalf("expected nil for no existing, got %+v", got)
		}
	})
}
