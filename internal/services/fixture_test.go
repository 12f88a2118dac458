package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/credentials"
	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-review-service/internal/testutil"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

const testPassword = "Secret123"

type fixture struct {
	db        *gorm.DB
	redis     *redis.Client
	repo      *postgres.PostgreSQLRepository
	publisher *events.MockEventPublisher
	notifier  *recordingNotifier
	blobs     blobstore.Store
	manager   ServiceManager
}

type fixtureOption func(*ServiceDependencies)

func withBlobs(store blobstore.Store) fixtureOption {
	return func(d *ServiceDependencies) { d.Blobs = store }
}

// withRepo lets a test intercept repository calls made by the services
func withRepo(wrap func(repositories.Repository) repositories.Repository) fixtureOption {
	return func(d *ServiceDependencies) { d.Repo = wrap(d.Repo) }
}

func withLogger(logger *slog.Logger) fixtureOption {
	return func(d *ServiceDependencies) { d.Logger = logger }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	client, _ := testutil.NewTestRedis(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})

	local, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	f := &fixture{
		db:        db,
		redis:     client,
		repo:      repo,
		publisher: events.NewMockEventPublisher(logger),
		notifier:  &recordingNotifier{},
	}
	jwt := credentials.NewJWTManager("test-secret", time.Hour)
	deps := ServiceDependencies{
		DB:        db,
		Repo:      repo,
		Logger:    logger,
		Validator: validator.New(),
		Credentials: Credentials{
			Hasher:   credentials.NewBcryptHasher(bcrypt.MinCost),
			Issuer:   jwt,
			Verifier: jwt,
		},
		Blobs:     local,
		Publisher: f.publisher,
		Notifier:  f.notifier,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.blobs = deps.Blobs

	f.manager = NewServiceManager(deps, ServiceManagerConfig{User: UserServiceConfig{ResetURL: "http://localhost/reset/"}})
	if err := f.manager.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize services: %v", err)
	}
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	resp, err := f.manager.User().Register(context.Background(), &SignupRequest{
		Name:            name,
		Email:           uuid.NewString()[:8] + "@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}, nil)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return resp.User
}

func (f *fixture) admin(t *testing.T) *models.User {
	t.Helper()
	admin := &models.User{
		ID:       uuid.NewString(),
		Name:     "Admin",
		Email:    uuid.NewString()[:8] + "@admin.example.com",
		Password: "x",
		Role:     models.RoleAdmin,
	}
	if err := f.repo.User().Create(context.Background(), nil, admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func (f *fixture) discipline(t *testing.T, admin *models.User, name string) *models.Discipline {
	t.Helper()
	d, err := f.manager.Discipline().Create(context.Background(), admin, &CreateDisciplineRequest{Name: name}, nil)
	if err != nil {
		t.Fatalf("create discipline %s: %v", name, err)
	}
	return d
}

func (f *fixture) course(t *testing.T, admin *models.User, disciplineSlug, name string, cost float64) *models.Course {
	t.Helper()
	c, err := f.manager.Course().Create(context.Background(), admin, disciplineSlug, &CreateCourseRequest{Name: name, Cost: cost})
	if err != nil {
		t.Fatalf("create course %s: %v", name, err)
	}
	return c
}

func (f *fixture) review(t *testing.T, author *models.User, courseSlug string, rating float64) *models.Review {
	t.Helper()
	r, err := f.manager.Review().Create(context.Background(), author, courseSlug, &CreateReviewRequest{Comment: "Solid course", Rating: rating})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return r
}

// rating reads the stored average straight from the database
func (f *fixture) rating(t *testing.T, courseID string) *float64 {
	t.Helper()
	var course models.Course
	if err := f.db.First(&course, "id = ?", courseID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}
	return course.AverageRating
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func assertRating(t *testing.T, got *float64, want *float64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Fatalf("rating = %v, want %v", fmtRating(got), fmtRating(want))
	case *got != *want:
		t.Fatalf("rating = %v, want %v", *got, *want)
	}
}

func fmtRating(r *float64) interface{} {
	if r == nil {
		return "null"
	}
	return *r
}

func ratingPtr(v float64) *float64 { return &v }

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var ue *UnauthorizedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func assertConflict(t *testing.T, err error) {
	t.Helper()
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func assertValidation(t *testing.T, err error, message string) {
	t.Helper()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, e := range ve {
		if e.Message == message {
			return
		}
	}
	t.Fatalf("validation errors %v do not contain %q", ve, message)
}

type recordingNotifier struct {
	mu   sync.Mutex
	urls []string
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, _ string, resetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, resetURL)
	return nil
}

// failingStore accepts uploads but can never remove them
type failingStore struct {
	inner    blobstore.Store
	removals int
}

var _ blobstore.Store = (*failingStore)(nil)

func (s *failingStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	return s.inner.Store(ctx, filename, data)
}

func (s *failingStore) Remove(context.Context, string) error {
	s.removals++
	return errors.New("bucket unavailable")
}
