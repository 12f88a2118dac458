package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

const (
	catalogSheet = "Courses"
	defaultSheet = "Sheet1"
)

var (
	exportHeader = []interface{}{"Discipline", "Course", "Slug", "Cost", "Average rating", "Reviews"}
	importHeader = []string{"discipline", "course", "cost"}
)

type importExportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ExportCourses writes the whole catalog into a single sheet workbook
func (s *importExportService) ExportCourses(ctx context.Context, principal *models.User) ([]byte, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	s.logger.Info("Exporting course catalog", "user_id", principal.ID)

	disciplines, err := s.repo.Discipline().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list disciplines: %w", err)
	}
	disciplineNames := make(map[string]string, len(disciplines))
	for _, d := range disciplines {
		disciplineNames[d.ID] = d.Name
	}

	courses, _, err := s.repo.Course().List(ctx, nil, repositories.CourseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.Review().CountByCourses(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	index, err := f.NewSheet(catalogSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(catalogSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, c := range courses {
		var rating interface{} = ""
		if c.AverageRating != nil {
			rating = *c.AverageRating
		}
		row := []interface{}{disciplineNames[c.DisciplineID], c.Name, c.Slug, c.Cost, rating, counts[c.ID]}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Course catalog exported", "courses", len(courses))
	return buf.Bytes(), nil
}

// ImportCatalog reads discipline, course and cost rows from the first sheet.
// Missing disciplines are created, existing courses are skipped and bad rows
// are reported without aborting the rest of the import.
func (s *importExportService) ImportCatalog(ctx context.Context, principal *models.User, data []byte) (*ImportResult, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fieldError("file", "The uploaded spreadsheet is empty.", "required")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fieldError("file", "The uploaded file is not a readable spreadsheet.", "xlsx")
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fieldError("file", "The uploaded spreadsheet has no sheets.", "xlsx")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	s.logger.Info("Importing course catalog", "user_id", principal.ID, "rows", len(rows))

	result := &ImportResult{}
	for i, row := range rows {
		rowNum := i + 1
		if i == 0 && isImportHeader(row) {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		created, skipped, err := s.importRow(ctx, principal, row)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Message: importErrorMessage(err)})
			continue
		}
		if created {
			result.DisciplinesCreated++
		}
		if skipped {
			result.Skipped++
		} else {
			result.CoursesCreated++
		}
	}

	s.logger.Info("Course catalog imported",
		"disciplines_created", result.DisciplinesCreated,
		"courses_created", result.CoursesCreated,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

// importRow reports whether a discipline was created and whether the course already existed
func (s *importExportService) importRow(ctx context.Context, principal *models.User, row []string) (bool, bool, error) {
	if len(row) < len(importHeader) {
		return false, false, fmt.Errorf("expected %d columns, got %d", len(importHeader), len(row))
	}

	disciplineReq := &validator.DisciplineCreateRequest{Name: row[0]}
	if errs := s.validator.GetBusinessValidator().ValidateDisciplineCreate(disciplineReq); len(errs) > 0 {
		return false, false, errs
	}
	cost, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return false, false, fieldError("cost", "The cost must be a number.", "numeric")
	}
	courseReq := &validator.CourseCreateRequest{Name: row[1], Cost: cost}
	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(courseReq); len(errs) > 0 {
		return false, false, errs
	}

	disciplineSlug := utils.Slugify(disciplineReq.Name)
	courseSlug := utils.Slugify(courseReq.Name)
	if disciplineSlug == "" || courseSlug == "" {
		return false, false, fieldError("name", "Names must contain letters or digits.", "slug")
	}

	var created, skipped bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discipline, err := s.repo.Discipline().GetBySlug(ctx, tx, disciplineSlug)
		switch {
		case err == nil:
		case repositories.IsNotFoundError(err):
			discipline = &models.Discipline{
				ID:     uuid.NewString(),
				Name:   disciplineReq.Name,
				Slug:   disciplineSlug,
				UserID: principal.ID,
			}
			if err := s.repo.Discipline().Create(ctx, tx, discipline); err != nil {
				return translateDuplicate(err, ErrDisciplineNameInUse)
			}
			created = true
		default:
			return err
		}

		exists, err := s.repo.Course().ExistsByName(ctx, tx, courseReq.Name, "")
		if err != nil {
			return err
		}
		if !exists {
			if exists, err = s.repo.Course().ExistsBySlug(ctx, tx, courseSlug, ""); err != nil {
				return err
			}
		}
		if exists {
			skipped = true
			return nil
		}

		course := &models.Course{
			ID:           uuid.NewString(),
			Name:         courseReq.Name,
			Slug:         courseSlug,
			NameTokens:   utils.TokenIndex(courseReq.Name),
			DisciplineID: discipline.ID,
			UserID:       principal.ID,
			Cost:         courseReq.Cost,
		}
		return translateDuplicate(s.repo.Course().Create(ctx, tx, course), ErrCourseNameInUse)
	})
	if err != nil {
		return false, false, err
	}
	if created {
		s.repo.Discipline().InvalidateCache(ctx, disciplineSlug)
	}
	return created, skipped, nil
}

func isImportHeader(row []string) bool {
	if len(row) < len(importHeader) {
		return false
	}
	for i, name := range importHeader {
		if !strings.EqualFold(strings.TrimSpace(row[i]), name) {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func importErrorMessage(err error) string {
	if errs, ok := err.(ValidationErrors); ok && len(errs) > 0 {
		return errs[0].Message
	}
	return err.Error()
}
