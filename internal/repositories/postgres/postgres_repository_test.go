package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/testutil"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type fixture struct {
	db   *gorm.DB
	repo *PostgreSQLRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	client, _ := testutil.NewTestRedis(t)
	return &fixture{db: db, repo: NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client})}
}

func (f *fixture) course(t *testing.T, disciplineID, name string, cost float64, rating *float64) *models.Course {
	t.Helper()
	course := &models.Course{
		ID:            uuid.NewString(),
		Name:          name,
		Slug:          utils.Slugify(name),
		NameTokens:    utils.TokenIndex(name),
		DisciplineID:  disciplineID,
		UserID:        "admin",
		Cost:          cost,
		AverageRating: rating,
	}
	if err := f.repo.Course().Create(context.Background(), nil, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func (f *fixture) review(t *testing.T, userID, courseID string, rating int) *models.Review {
	t.Helper()
	review := &models.Review{ID: uuid.NewString(), Comment: "ok", Rating: rating, UserID: userID, CourseID: courseID}
	if err := f.repo.Review().Create(context.Background(), nil, review); err != nil {
		t.Fatalf("create review: %v", err)
	}
	return review
}

func ratingPtr(v float64) *float64 { return &v }

func mustPlan(t *testing.T, cfg query.EntityConfig, params query.Params) *query.Plan {
	t.Helper()
	plan, err := query.Build(cfg, params)
	if err != nil {
		t.Fatalf("query.Build() error = %v", err)
	}
	return plan
}

func TestCourseSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.course(t, "d1", "Physics 1", 100, ratingPtr(7))
	f.course(t, "d1", "Physics 2", 150, nil)
	f.course(t, "d1", "Organic Chemistry", 50, ratingPtr(9))
	f.course(t, "d2", "Quantum Physics", 190, ratingPtr(4.5))

	tests := []struct {
		name         string
		params       query.Params
		disciplineID string
		wantNames    []string
		wantTotal    int64
	}{
		{
			name:      "default sort puts unrated last",
			params:    query.Params{},
			wantNames: []string{"Organic Chemistry", "Physics 1", "Quantum Physics", "Physics 2"},
			wantTotal: 4,
		},
		{
			name:      "keyword match is token based",
			params:    query.Params{Name: "physics", SortBy: "name", Direction: "asc"},
			wantNames: []string{"Physics 1", "Physics 2", "Quantum Physics"},
			wantTotal: 3,
		},
		{
			name:      "keywords are OR-ed",
			params:    query.Params{Name: "organic quantum", SortBy: "cost", Direction: "asc"},
			wantNames: []string{"Organic Chemistry", "Quantum Physics"},
			wantTotal: 2,
		},
		{
			name:      "partial words do not match",
			params:    query.Params{Name: "phys"},
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name: "range filters",
			params: query.Params{
				Ranges: map[string]map[string]string{"cost": {"gte": "100", "lt": "190"}},
				SortBy: "cost", Direction: "asc",
			},
			wantNames: []string{"Physics 1", "Physics 2"},
			wantTotal: 2,
		},
		{
			name: "in filter on rating",
			params: query.Params{
				Ranges: map[string]map[string]string{"rating": {"in": "7,9"}},
				SortBy: "averageRating", Direction: "asc",
			},
			wantNames: []string{"Physics 1", "Organic Chemistry"},
			wantTotal: 2,
		},
		{
			name:         "discipline scope",
			params:       query.Params{Name: "physics"},
			disciplineID: "d2",
			wantNames:    []string{"Quantum Physics"},
			wantTotal:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustPlan(t, query.CourseListing, tt.params)
			courses, total, err := f.repo.Course().Search(ctx, nil, plan, tt.disciplineID)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(courses) != len(tt.wantNames) {
				t.Fatalf("got %d courses, want %d", len(courses), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if courses[i].Name != name {
					t.Errorf("courses[%d] = %q, want %q", i, courses[i].Name, name)
				}
			}
		})
	}
}

func TestCourseSearchClampsPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		f.course(t, "d1", "Course "+string(rune('a'+i)), 10, nil)
	}

	plan := mustPlan(t, query.CourseListing, query.Params{Page: "99", Limit: "5", SortBy: "name", Direction: "asc"})
	courses, total, err := f.repo.Course().Search(ctx, nil, plan, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if plan.Page != 2 {
		t.Errorf("page = %d, want 2", plan.Page)
	}
	if len(courses) != 2 || courses[0].Name != "Course f" {
		t.Errorf("unexpected page 2 contents: %d courses", len(courses))
	}
}

func TestReviewAggregationQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	physics := f.course(t, "d1", "Physics 1", 100, nil)
	chemistry := f.course(t, "d1", "Chemistry", 100, nil)
	f.review(t, "alice", physics.ID, 5)
	f.review(t, "bob", physics.ID, 9)
	f.review(t, "alice", chemistry.ID, 3)

	summary, err := f.repo.Review().RatingSummary(ctx, nil, physics.ID)
	if err != nil {
		t.Fatalf("RatingSummary() error = %v", err)
	}
	if summary.Count != 2 || summary.Sum != 14 {
		t.Errorf("summary = %+v, want count 2 sum 14", summary)
	}

	empty, err := f.repo.Review().RatingSummary(ctx, nil, "missing")
	if err != nil {
		t.Fatalf("RatingSummary() error = %v", err)
	}
	if empty.Count != 0 || empty.Sum != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	counts, err := f.repo.Review().CountByCourses(ctx, nil, []string{physics.ID, chemistry.ID})
	if err != nil {
		t.Fatalf("CountByCourses() error = %v", err)
	}
	if counts[physics.ID] != 2 || counts[chemistry.ID] != 1 {
		t.Errorf("counts = %v", counts)
	}

	courseIDs, err := f.repo.Review().DeleteByUser(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}
	if len(courseIDs) != 2 {
		t.Errorf("touched courses = %v, want 2 distinct", courseIDs)
	}
	if exists, _ := f.repo.Review().ExistsByUserAndCourse(ctx, nil, "alice", physics.ID); exists {
		t.Error("alice's review survived DeleteByUser()")
	}
}

func TestDuplicateReviewIsTranslated(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "d1", "Physics 1", 100, nil)
	f.review(t, "alice", course.ID, 5)

	err := f.repo.Review().Create(context.Background(), nil, &models.Review{
		ID: uuid.NewString(), Comment: "again", Rating: 6, UserID: "alice", CourseID: course.ID,
	})
	if !repositories.IsDuplicateError(err) {
		t.Fatalf("Create() error = %v, want duplicate key", err)
	}
}

func TestListByUserHidesOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept := f.course(t, "d1", "Kept", 10, nil)
	gone := f.course(t, "d1", "Gone", 10, nil)
	f.review(t, "alice", kept.ID, 5)
	f.review(t, "alice", gone.ID, 5)

	// delete the course without its reviews to leave an orphan behind
	if err := f.repo.Course().Delete(ctx, nil, gone); err != nil {
		t.Fatal(err)
	}

	reviews, err := f.repo.Review().ListByUser(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(reviews) != 1 || reviews[0].CourseID != kept.ID {
		t.Fatalf("ListByUser() returned %d reviews, want only the one on a live course", len(reviews))
	}
	if reviews[0].Course == nil || reviews[0].Course.Slug != "kept" {
		t.Error("course was not preloaded")
	}
}

func TestCourseCacheInvalidatedOnRatingUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "d1", "Physics 1", 100, nil)

	cached, err := f.repo.Course().GetBySlug(ctx, nil, "physics-1")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if cached.AverageRating != nil {
		t.Fatalf("fresh course has rating %v", *cached.AverageRating)
	}

	if err := f.repo.Course().UpdateAverageRating(ctx, nil, course, ratingPtr(7)); err != nil {
		t.Fatalf("UpdateAverageRating() error = %v", err)
	}

	fresh, err := f.repo.Course().GetBySlug(ctx, nil, "physics-1")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if fresh.AverageRating == nil || *fresh.AverageRating != 7 {
		t.Errorf("rating after update = %v, want 7", fresh.AverageRating)
	}

	if err := f.repo.Course().UpdateAverageRating(ctx, nil, course, nil); err != nil {
		t.Fatalf("UpdateAverageRating(nil) error = %v", err)
	}
	cleared, err := f.repo.Course().GetByID(ctx, nil, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.AverageRating != nil {
		t.Errorf("rating = %v, want NULL", *cleared.AverageRating)
	}
}

func TestExistsExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "d1", "Physics 1", 100, nil)

	exists, err := f.repo.Course().ExistsByName(ctx, nil, "Physics 1", course.ID)
	if err != nil || exists {
		t.Errorf("ExistsByName(self) = %v, %v", exists, err)
	}
	exists, err = f.repo.Course().ExistsBySlug(ctx, nil, "physics-1", "")
	if err != nil || !exists {
		t.Errorf("ExistsBySlug() = %v, %v", exists, err)
	}
}

func TestMissingRecordIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Discipline().GetBySlug(context.Background(), nil, "nothing-here")
	if !repositories.IsNotFoundError(err) {
		t.Errorf("GetBySlug() error = %v, want not found", err)
	}
}
