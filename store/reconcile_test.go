package store_test

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
	"github.com/dcode-github/rental_listing_platform/store/memstore"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	s := memstore.New().Stores()

	kept := &models.Property{City: "Pune"}
	if err := s.Properties.Create(ctx, kept); err != nil {
		t.Fatalf("create property: %v", err)
	}

	linked := &models.Review{Property: kept.ID, Rating: 5}
	unlinked := &models.Review{Property: kept.ID, Rating: 3}
	orphan := &models.Review{Property: primitive.NewObjectID(), Rating: 1}
	for _, r := range []*models.Review{linked, unlinked, orphan} {
		if err := s.Reviews.Create(ctx, r); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	dangling := primitive.NewObjectID()
	for _, rid := range []primitive.ObjectID{linked.ID, dangling} {
		if err := s.Properties.PushReview(ctx, kept.ID, rid); err != nil {
			t.Fatalf("push review: %v", err)
		}
	}

	report, err := store.Reconcile(ctx, s.Properties, s.Reviews)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.DanglingRefs != 1 {
		t.Errorf("DanglingRefs = %d, want 1", report.DanglingRefs)
	}
	if report.Relinked != 1 {
		t.Errorf("Relinked = %d, want 1", report.Relinked)
	}
	if len(report.Orphans) != 1 || report.Orphans[0] != orphan.ID {
		t.Errorf("Orphans = %v, want [%s]", report.Orphans, orphan.ID.Hex())
	}

	got, err := s.Properties.FindByID(ctx, kept.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	want := []primitive.ObjectID{linked.ID, unlinked.ID}
	if len(got.Reviews) != len(want) || got.Reviews[0] != want[0] || got.Reviews[1] != want[1] {
		t.Errorf("reviews = %v, want %v", got.Reviews, want)
	}
}

func TestReconcileMisplacedAndDuplicatedRefs(t *testing.T) {
	ctx := context.Background()
	s := memstore.New().Stores()

	home := &models.Property{City: "Pune"}
	other := &models.Property{City: "Mumbai"}
	for _, p := range []*models.Property{home, other} {
		if err := s.Properties.Create(ctx, p); err != nil {
			t.Fatalf("create property: %v", err)
		}
	}

	first := &models.Review{Property: home.ID, Rating: 4}
	second := &models.Review{Property: home.ID, Rating: 2}
	for _, r := range []*models.Review{first, second} {
		if err := s.Reviews.Create(ctx, r); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	pushes := []struct{ prop, review primitive.ObjectID }{
		{home.ID, first.ID},
		{home.ID, second.ID},
		{home.ID, first.ID},
		{other.ID, second.ID},
	}
	for _, p := range pushes {
		if err := s.Properties.PushReview(ctx, p.prop, p.review); err != nil {
			t.Fatalf("push review: %v", err)
		}
	}

	report, err := store.Reconcile(ctx, s.Properties, s.Reviews)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Misplaced != 1 || report.Duplicated != 1 || report.Relinked != 0 || report.DanglingRefs != 0 {
		t.Errorf("report = %+v, want 1 misplaced, 1 duplicated", report)
	}

	got, err := s.Properties.FindByID(ctx, home.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	want := []primitive.ObjectID{second.ID, first.ID}
	if len(got.Reviews) != len(want) || got.Reviews[0] != want[0] || got.Reviews[1] != want[1] {
		t.Errorf("home reviews = %v, want %v", got.Reviews, want)
	}

	got, err = s.Properties.FindByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Reviews) != 0 {
		t.Errorf("other reviews = %v, want none", got.Reviews)
	}

	again, err := store.Reconcile(ctx, s.Properties, s.Reviews)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if again.Misplaced+again.Duplicated+again.Relinked+again.DanglingRefs != 0 || len(again.Orphans) != 0 {
		t.Errorf("second pass = %+v, want no changes", again)
	}
}
