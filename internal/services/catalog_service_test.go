package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

func TestDisciplineAndCourseAreAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice := f.user(t, "Alice")
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)

	_, err := f.manager.Discipline().Create(ctx, alice, &CreateDisciplineRequest{Name: "Chemistry"}, nil)
	assertUnauthorized(t, err)

	_, err = f.manager.Course().Create(ctx, alice, d.Slug, &CreateCourseRequest{Name: "Optics", Cost: 20})
	assertUnauthorized(t, err)

	cost := 10.0
	_, err = f.manager.Course().Update(ctx, alice, c.Slug, &UpdateCourseRequest{Cost: &cost})
	assertUnauthorized(t, err)

	err = f.manager.Discipline().Delete(ctx, nil, d.Slug)
	assertUnauthorized(t, err)
}

func TestCourseSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	d := f.discipline(t, admin, "Physics")

	c := f.course(t, admin, d.Slug, "  Quantum Mechanics: Part 1 ", 80)
	if c.Name != "Quantum Mechanics: Part 1" || c.Slug != "quantum-mechanics-part-1" {
		t.Fatalf("got name %q slug %q", c.Name, c.Slug)
	}

	tests := []struct {
		name string
	}{
		{name: "Quantum Mechanics: Part 1"},
		{name: "quantum mechanics part 1"},
		{name: "Quantum-Mechanics Part 1!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Course().Create(ctx, admin, d.Slug, &CreateCourseRequest{Name: tt.name, Cost: 10})
			assertConflict(t, err)
		})
	}

	_, err := f.manager.Course().Create(ctx, admin, "no-such-discipline", &CreateCourseRequest{Name: "Optics", Cost: 10})
	assertNotFound(t, err)

	_, err = f.manager.Course().Create(ctx, admin, d.Slug, &CreateCourseRequest{Name: "Optics", Cost: 500})
	assertValidation(t, err, "The cost must be between 1 and 200.")
}

func TestNonLatinNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	science := f.discipline(t, admin, "Наука")
	if science.Slug != "nauka" {
		t.Fatalf("discipline slug = %q, want nauka", science.Slug)
	}

	tests := []struct {
		name     string
		wantSlug string
	}{
		{name: "Физика 1", wantSlug: "fizika-1"},
		{name: "Химия 1"},
		{name: "物理"},
		{name: "Café Basics", wantSlug: "cafe-basics"},
	}
	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.manager.Course().Create(ctx, admin, science.Slug, &CreateCourseRequest{Name: tt.name, Cost: 10})
			if err != nil {
				t.Fatalf("create %q: %v", tt.name, err)
			}
			if tt.wantSlug != "" && c.Slug != tt.wantSlug {
				t.Errorf("slug = %q, want %q", c.Slug, tt.wantSlug)
			}
			if seen[c.Slug] {
				t.Errorf("slug %q reused", c.Slug)
			}
			seen[c.Slug] = true

			got, err := f.manager.Course().GetBySlug(ctx, c.Slug, false)
			if err != nil || got.Name != tt.name {
				t.Errorf("GetBySlug(%q) = %v, %v", c.Slug, got, err)
			}
		})
	}

	// the accent-free spelling maps to the same slug
	_, err := f.manager.Course().Create(ctx, admin, science.Slug, &CreateCourseRequest{Name: "Cafe Basics", Cost: 10})
	assertConflict(t, err)
}

func TestCourseCostBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	d := f.discipline(t, admin, "Physics")

	tests := []struct {
		name  string
		cost  float64
		valid bool
	}{
		{name: "Lowest", cost: 1, valid: true},
		{name: "Highest", cost: 200, valid: true},
		{name: "Too Cheap", cost: 0.99},
		{name: "Too Pricey", cost: 200.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.manager.Course().Create(ctx, admin, d.Slug, &CreateCourseRequest{Name: tt.name, Cost: tt.cost})
			if !tt.valid {
				assertValidation(t, err, "The cost must be between 1 and 200.")
				return
			}
			if err != nil {
				t.Fatalf("create with cost %v: %v", tt.cost, err)
			}

			for _, cost := range []float64{0.99, 200.01} {
				cost := cost
				_, err := f.manager.Course().Update(ctx, admin, c.Slug, &UpdateCourseRequest{Cost: &cost})
				assertValidation(t, err, "The cost must be between 1 and 200.")
			}
			cost := tt.cost
			if _, err := f.manager.Course().Update(ctx, admin, c.Slug, &UpdateCourseRequest{Cost: &cost}); err != nil {
				t.Errorf("update with cost %v: %v", tt.cost, err)
			}
		})
	}
}

// staleListRepo repopulates the cached discipline list with an outdated value
// right after a discipline insert, while the insert is still uncommitted.
type staleListRepo struct {
	repositories.Repository
	disciplines *staleListDisciplines
}

func (r *staleListRepo) Discipline() repositories.DisciplineRepository { return r.disciplines }

type staleListDisciplines struct {
	repositories.DisciplineRepository
	afterCreate func(ctx context.Context)
}

func (d *staleListDisciplines) Create(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error {
	if err := d.DisciplineRepository.Create(ctx, tx, discipline); err != nil {
		return err
	}
	d.afterCreate(ctx)
	return nil
}

func TestDisciplineListCacheAfterCreate(t *testing.T) {
	var f *fixture
	f = newFixture(t, withRepo(func(repo repositories.Repository) repositories.Repository {
		return &staleListRepo{
			Repository: repo,
			disciplines: &staleListDisciplines{
				DisciplineRepository: repo.Discipline(),
				afterCreate: func(ctx context.Context) {
					if err := f.redis.Set(ctx, "stats:disciplines:all", "[]", time.Minute).Err(); err != nil {
						t.Errorf("seed stale list: %v", err)
					}
				},
			},
		}
	}))
	ctx := context.Background()
	admin := f.admin(t)

	names := func() []string {
		t.Helper()
		list, err := f.manager.Discipline().List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		out := make([]string, len(list))
		for i, d := range list {
			out[i] = d.Name
		}
		return out
	}

	f.discipline(t, admin, "Physics")
	if got := names(); len(got) != 1 || got[0] != "Physics" {
		t.Errorf("after create = %v, want [Physics]", got)
	}

	result, err := f.manager.ImportExport().ImportCatalog(ctx, admin, workbook(t, [][]interface{}{
		{"discipline", "course", "cost"},
		{"Biology", "Cells", 20},
	}))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.DisciplinesCreated != 1 {
		t.Fatalf("result = %+v", result)
	}
	if got := names(); len(got) != 2 || got[0] != "Biology" || got[1] != "Physics" {
		t.Errorf("after import = %v, want [Biology Physics]", got)
	}
}

func TestCourseRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	d := f.discipline(t, admin, "Physics")
	c := f.course(t, admin, d.Slug, "Physics 1", 50)
	f.course(t, admin, d.Slug, "Physics 2", 50)

	// warm the cache for the old slug
	if _, err := f.manager.Course().GetBySlug(ctx, c.Slug, false); err != nil {
		t.Fatalf("get course: %v", err)
	}

	name := "Classical Physics"
	renamed, err := f.manager.Course().Update(ctx, admin, c.Slug, &UpdateCourseRequest{Name: &name})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Slug != "classical-physics" {
		t.Fatalf("slug = %q, want classical-physics", renamed.Slug)
	}

	_, err = f.manager.Course().GetBySlug(ctx, "physics-1", false)
	assertNotFound(t, err)

	got, err := f.manager.Course().GetBySlug(ctx, "classical-physics", false)
	if err != nil {
		t.Fatalf("get renamed: %v", err)
	}
	if got.ID != c.ID || got.Cost != 50 {
		t.Errorf("renamed course = %+v", got)
	}

	taken := "Physics 2"
	_, err = f.manager.Course().Update(ctx, admin, renamed.Slug, &UpdateCourseRequest{Name: &taken})
	assertConflict(t, err)

	_, err = f.manager.Course().Update(ctx, admin, renamed.Slug, &UpdateCourseRequest{})
	assertValidation(t, err, "Nothing to update.")

	// renaming to its own name is not a conflict
	same := "Classical Physics"
	if _, err := f.manager.Course().Update(ctx, admin, renamed.Slug, &UpdateCourseRequest{Name: &same}); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}
}

func TestCourseListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	physics := f.discipline(t, admin, "Physics")
	mathematics := f.discipline(t, admin, "Math")
	f.course(t, admin, physics.Slug, "Intro to Physics", 20)
	f.course(t, admin, physics.Slug, "Advanced Physics", 120)
	f.course(t, admin, mathematics.Slug, "Intro to Algebra", 30)

	tests := []struct {
		name      string
		scope     string
		params    query.Params
		wantTotal int64
	}{
		{name: "everything", params: query.Params{Limit: "10"}, wantTotal: 3},
		{name: "keyword", params: query.Params{Name: "intro"}, wantTotal: 2},
		{name: "cost range", params: query.Params{Ranges: map[string]map[string]string{"cost": {"lte": "30"}}}, wantTotal: 2},
		{name: "discipline scope", scope: physics.Slug, wantTotal: 2},
		{name: "scope and keyword", scope: mathematics.Slug, params: query.Params{Name: "physics"}, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *ListResponse[*models.Course]
			var err error
			if tt.scope == "" {
				resp, err = f.manager.Course().List(ctx, tt.params)
			} else {
				resp, err = f.manager.Course().ListByDiscipline(ctx, tt.scope, tt.params)
			}
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if resp.Total != tt.wantTotal || int64(len(resp.Items)) != tt.wantTotal {
				t.Errorf("total = %d items = %d, want %d", resp.Total, len(resp.Items), tt.wantTotal)
			}
		})
	}

	_, err := f.manager.Course().List(ctx, query.Params{Ranges: map[string]map[string]string{"cost": {"gte": "cheap"}}})
	var ve ValidationErrors
	if !errors.As(err, &ve) || ve[0].Field != "cost" {
		t.Fatalf("expected a cost filter error, got %v", err)
	}

	_, err = f.manager.Course().ListByDiscipline(ctx, "no-such-discipline", query.Params{})
	assertNotFound(t, err)
}

func TestDisciplineImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	_, err := f.manager.Discipline().Create(ctx, admin, &CreateDisciplineRequest{Name: "Art"}, &ImageUpload{Filename: "art.gif", Data: []byte("gif")})
	assertValidation(t, err, "Images must be png or jpeg files.")

	d, err := f.manager.Discipline().Create(ctx, admin, &CreateDisciplineRequest{Name: "Art"}, &ImageUpload{Filename: "art.png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ImageURL == nil {
		t.Fatal("expected an image reference")
	}
	first := *d.ImageURL

	updated, err := f.manager.Discipline().Update(ctx, admin, d.Slug, &UpdateDisciplineRequest{}, &ImageUpload{Filename: "art.jpg", Data: []byte("jpg")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageURL == nil || *updated.ImageURL == first {
		t.Fatalf("image was not replaced: %v", updated.ImageURL)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("old image still on disk: %v", err)
	}

	_, err = f.manager.Discipline().Create(ctx, admin, &CreateDisciplineRequest{Name: "art"}, nil)
	assertConflict(t, err)

	list, err := f.manager.Discipline().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Art" {
		t.Errorf("list = %+v", list)
	}
}
