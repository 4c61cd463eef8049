package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReconcileReport lists what a reconciliation pass found and fixed.
type ReconcileReport struct {
	// DanglingRefs were review ids on a property with no review document;
	// they have been pulled.
	DanglingRefs int
	// Misplaced were review ids listed on a property other than the one the
	// review belongs to; they have been pulled.
	Misplaced int
	// Duplicated were review ids listed more than once on their property;
	// they have been collapsed to one entry.
	Duplicated int
	// Relinked were reviews whose property exists but did not list them;
	// they have been pushed.
	Relinked int
	// Orphans are reviews whose property no longer exists. They are left in
	// place.
	Orphans []primitive.ObjectID
}

// Reconcile repairs the property/review linkage after partial failures of the
// two-step review writes.
func Reconcile(ctx context.Context, props PropertyStore, reviews ReviewStore) (*ReconcileReport, error) {
	all, err := reviews.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	existing := make(map[primitive.ObjectID]primitive.ObjectID, len(all))
	for _, r := range all {
		existing[r.ID] = r.Property
	}

	properties, err := props.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	report := &ReconcileReport{}
	linked := make(map[primitive.ObjectID]bool)
	duplicated := make(map[primitive.ObjectID]bool)
	known := make(map[primitive.ObjectID]bool, len(properties))
	for _, p := range properties {
		known[p.ID] = true
		seen := make(map[primitive.ObjectID]int, len(p.Reviews))
		for _, rid := range p.Reviews {
			seen[rid]++
		}
		for _, rid := range p.Reviews {
			n, pending := seen[rid]
			if !pending {
				continue
			}
			delete(seen, rid)

			owner, ok := existing[rid]
			switch {
			case !ok:
				report.DanglingRefs++
			case owner != p.ID:
				report.Misplaced++
			case n > 1:
				// $pull drops every copy; the relink pass below pushes one back.
				report.Duplicated++
				duplicated[rid] = true
			default:
				linked[rid] = true
				continue
			}
			if err := props.PullReview(ctx, p.ID, rid); err != nil {
				return report, fmt.Errorf("pulling review %s from %s: %w", rid.Hex(), p.ID.Hex(), err)
			}
		}
	}

	for _, r := range all {
		if linked[r.ID] {
			continue
		}
		if !known[r.Property] {
			report.Orphans = append(report.Orphans, r.ID)
			continue
		}
		if err := props.PushReview(ctx, r.Property, r.ID); err != nil {
			return report, fmt.Errorf("linking review %s to %s: %w", r.ID.Hex(), r.Property.Hex(), err)
		}
		if !duplicated[r.ID] {
			report.Relinked++
		}
	}

	return report, nil
}
