package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
)

func TestReviewLifecycleMaintainsAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")

	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	assertRating(t, f.rating(t, c.ID), nil)

	f.review(t, alice, c.Slug, 5)
	assertRating(t, f.rating(t, c.ID), ratingPtr(5))

	bobReview := f.review(t, bob, c.Slug, 9)
	assertRating(t, f.rating(t, c.ID), ratingPtr(7))

	if err := f.manager.User().Delete(ctx, alice, alice.ID); err != nil {
		t.Fatalf("delete alice: %v", err)
	}
	assertRating(t, f.rating(t, c.ID), ratingPtr(9))

	newRating := 6.0
	if _, err := f.manager.Review().Update(ctx, bob, bobReview.ID, &UpdateReviewRequest{Rating: &newRating}); err != nil {
		t.Fatalf("update review: %v", err)
	}
	assertRating(t, f.rating(t, c.ID), ratingPtr(6))

	if err := f.manager.Review().Delete(ctx, bob, bobReview.ID); err != nil {
		t.Fatalf("delete review: %v", err)
	}
	assertRating(t, f.rating(t, c.ID), nil)

	// the cached read must not serve the stale average
	cached, err := f.manager.Course().GetBySlug(ctx, c.Slug, false)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if cached.AverageRating != nil {
		t.Fatalf("cached average = %v, want null", *cached.AverageRating)
	}

	if got := len(f.publisher.EventsOfType(events.CourseRatingUpdated)); got != 4 {
		t.Errorf("rating update events = %d, want 4", got)
	}
}

func TestAverageIsRoundedToTwoDecimals(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	d := f.discipline(t, admin, "Math")
	c := f.course(t, admin, d.Slug, "Algebra", 10)

	for i, rating := range []float64{7, 7, 8} {
		f.review(t, f.user(t, "User "+string(rune('A'+i))), c.Slug, rating)
	}
	assertRating(t, f.rating(t, c.ID), ratingPtr(7.33))
}

func TestCreateReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	f.review(t, alice, c.Slug, 8)

	tests := []struct {
		name   string
		author *models.User
		slug   string
		req    *CreateReviewRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "duplicate review",
			author: alice,
			slug:   c.Slug,
			req:    &CreateReviewRequest{Comment: "Again", Rating: 3},
			check:  assertConflict,
		},
		{
			name:   "unknown course",
			author: admin,
			slug:   "no-such-course",
			req:    &CreateReviewRequest{Comment: "Hi", Rating: 3},
			check:  assertNotFound,
		},
		{
			name:   "malformed course slug",
			author: admin,
			slug:   "Not A Slug!",
			req:    &CreateReviewRequest{Comment: "Hi", Rating: 3},
			check:  assertNotFound,
		},
		{
			name:   "fractional rating",
			author: admin,
			slug:   c.Slug,
			req:    &CreateReviewRequest{Comment: "Hi", Rating: 7.5},
			check: func(t *testing.T, err error) {
				assertValidation(t, err, "Your rating must be a whole number from 1 to 10.")
			},
		},
		{
			name:   "anonymous",
			author: nil,
			slug:   c.Slug,
			req:    &CreateReviewRequest{Comment: "Hi", Rating: 3},
			check:  assertUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Review().Create(ctx, tt.author, tt.slug, tt.req)
			tt.check(t, err)
		})
	}

	assertRating(t, f.rating(t, c.ID), ratingPtr(8))
}

func TestReviewOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	mallory := f.user(t, "Mallory")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	review := f.review(t, alice, c.Slug, 4)

	comment := "Edited"
	_, err := f.manager.Review().Update(ctx, mallory, review.ID, &UpdateReviewRequest{Comment: &comment})
	assertUnauthorized(t, err)

	err = f.manager.Review().Delete(ctx, mallory, review.ID)
	assertUnauthorized(t, err)
	if _, err := f.manager.Review().GetByID(ctx, review.ID); err != nil {
		t.Fatalf("review should remain after a rejected delete: %v", err)
	}

	// admins act on anyone's review
	if err := f.manager.Review().Delete(ctx, admin, review.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	_, err = f.manager.Review().GetByID(ctx, review.ID)
	assertNotFound(t, err)
}

func TestUpdateReviewNothingToUpdate(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	review := f.review(t, alice, c.Slug, 4)

	_, err := f.manager.Review().Update(context.Background(), alice, review.ID, &UpdateReviewRequest{})
	assertValidation(t, err, "Nothing to update.")
}

func TestUpdateCommentKeepsAverage(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	review := f.review(t, alice, c.Slug, 4)
	before := len(f.publisher.EventsOfType(events.CourseRatingUpdated))

	comment := "  Better than expected  "
	updated, err := f.manager.Review().Update(context.Background(), alice, review.ID, &UpdateReviewRequest{Comment: &comment})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Comment != "Better than expected" {
		t.Errorf("comment = %q, want trimmed text", updated.Comment)
	}
	if got := len(f.publisher.EventsOfType(events.CourseRatingUpdated)); got != before {
		t.Errorf("rating events = %d, want %d", got, before)
	}
	assertRating(t, f.rating(t, c.ID), ratingPtr(4))
}

func TestOrphanedReviewIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	review := f.review(t, alice, c.Slug, 4)

	// remove the course without going through the cascade
	if err := f.db.Delete(&models.Course{}, "id = ?", c.ID).Error; err != nil {
		t.Fatalf("delete course row: %v", err)
	}

	_, err := f.manager.Review().GetByID(ctx, review.ID)
	assertNotFound(t, err)

	profile, err := f.manager.User().GetProfile(ctx, alice)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile.Reviews) != 0 {
		t.Errorf("profile lists %d reviews, want orphans hidden", len(profile.Reviews))
	}
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	_, err := f.manager.Review().GetByID(ctx, "not-a-uuid")
	assertNotFound(t, err)

	err = f.manager.Review().Delete(ctx, admin, "1234")
	assertNotFound(t, err)

	_, err = f.manager.User().GetByID(ctx, "nope", false)
	assertNotFound(t, err)

	_, err = f.manager.Course().GetBySlug(ctx, "Bad Slug", false)
	assertNotFound(t, err)
}

func TestListByCourseClampsPage(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	for i := 0; i < 3; i++ {
		f.review(t, f.user(t, "Reviewer "+string(rune('A'+i))), c.Slug, float64(i+2))
	}

	resp, err := f.manager.Review().ListByCourse(context.Background(), c.Slug, query.Params{Page: "99", Limit: "2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Page != 2 || resp.Total != 3 || len(resp.Items) != 1 {
		t.Fatalf("got page=%d total=%d items=%d, want page=2 total=3 items=1", resp.Page, resp.Total, len(resp.Items))
	}
	if resp.Items[0].User == nil || resp.Items[0].User.Email != "" {
		t.Errorf("review author should be loaded without email: %+v", resp.Items[0].User)
	}
}
