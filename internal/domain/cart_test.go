package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func itemized(id int64, names ...string) Package {
	content := make([]ContentLine, len(names))
	for i, n := range names {
		content[i] = ContentLine{Name: n, Quantity: 1}
	}
	return Package{ID: id, Content: content}
}

func TestCartRemoveContentLine(t *testing.T) {
	var cart Cart
	cart.Add(itemized(1, "Bread", "Soup", "Cake", "Fruit"))

	if err := cart.RemoveContentLine(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := cart.RemoveContentLine(0, 0); err != nil {
		t.Fatal(err)
	}

	line := cart.Lines()[0]
	if line.RemovedItems != 2 {
		t.Errorf("expected 2 removed items, got %d", line.RemovedItems)
	}
	if len(line.Content) != 2 || line.Content[0].Name != "Cake" || line.Content[1].Name != "Fruit" {
		t.Errorf("unexpected remaining content %+v", line.Content)
	}

	// Third removal exceeds the per-package cap.
	if err := cart.RemoveContentLine(0, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput after %d removals, got %v", MaxRemovedItems, err)
	}
}

func TestCartKeepsLastContentLine(t *testing.T) {
	var cart Cart
	cart.Add(itemized(1, "Bread"))

	if err := cart.RemoveContentLine(0, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput removing the last entry, got %v", err)
	}
	if len(cart.Lines()[0].Content) != 1 {
		t.Error("content must be untouched after a rejected removal")
	}
}

func TestCartSnapshotAlignment(t *testing.T) {
	var cart Cart
	cart.Add(itemized(20, "Tiramisu"))
	cart.Add(Package{ID: 10}) // surprise package, nil content
	cart.Add(itemized(30, "Bread", "Soup"))

	if err := cart.RemoveContentLine(2, 0); err != nil {
		t.Fatal(err)
	}

	ids, snaps := cart.Snapshot()
	if len(ids) != 3 || len(snaps) != 3 {
		t.Fatalf("expected 3 aligned entries, got %d ids and %d snapshots", len(ids), len(snaps))
	}
	if ids[0] != 20 || ids[1] != 10 || ids[2] != 30 {
		t.Errorf("ids out of insertion order: %v", ids)
	}
	if snaps[1] != nil {
		t.Errorf("surprise package snapshot must be nil, got %v", snaps[1])
	}
	if len(snaps[2]) != 1 || snaps[2][0].Name != "Soup" {
		t.Errorf("reduced snapshot not aligned: %v", snaps[2])
	}
}

func TestNewBookingRequestValidation(t *testing.T) {
	if _, err := NewBookingRequest(1, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty request: expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewBookingRequest(1, []int64{1, 2}, [][]ContentLine{nil}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("length mismatch: expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewBookingRequest(1, []int64{1, 1}, [][]ContentLine{nil, nil}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("duplicate ids: expected ErrInvalidInput, got %v", err)
	}
	req, err := NewBookingRequest(1, []int64{1, 2}, [][]ContentLine{nil, {{Name: "Bread", Quantity: 2}}})
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if req.UserID != 1 || len(req.PackageIDs) != 2 {
		t.Errorf("unexpected request %+v", req)
	}
}
