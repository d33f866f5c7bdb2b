package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type disciplineService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewDisciplineService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) DisciplineService {
	return &disciplineService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *disciplineService) Create(ctx context.Context, req *DisciplineCreateRequest) (*models.Discipline, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	discipline := &models.Discipline{
		Name:           strings.TrimSpace(req.Name),
		YearOfStudy:    req.YearOfStudy,
		Specialization: req.Specialization,
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Disciplines().Create(ctx, discipline); err != nil {
			if repositories.IsDuplicateKey(err) {
				return validator.ValidationErrors{{
					Field:   "name",
					Message: "a discipline with this name already exists",
					Value:   discipline.Name,
					Rule:    "unique",
				}}
			}
			return err
		}
		if len(req.TeacherIDs) > 0 {
			if err := s.checkTeachers(ctx, tx, req.TeacherIDs); err != nil {
				return err
			}
			return tx.Disciplines().ReplaceTeachers(ctx, discipline.ID, req.TeacherIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "discipline:*")
	s.logger.Info("discipline created", "discipline_id", discipline.ID, "name", discipline.Name)
	return s.GetByID(ctx, discipline.ID)
}

func (s *disciplineService) GetByID(ctx context.Context, id uint) (*models.Discipline, error) {
	discipline, err := s.repo.Disciplines().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}
	return discipline, nil
}

func (s *disciplineService) List(ctx context.Context, filter repositories.DisciplineFilter) ([]models.Discipline, error) {
	return s.repo.Disciplines().List(ctx, filter)
}

func (s *disciplineService) Update(ctx context.Context, id uint, req *DisciplineUpdateRequest) (*models.Discipline, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		discipline, err := tx.Disciplines().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrDisciplineNotFound
			}
			return err
		}

		if req.Name != nil {
			discipline.Name = strings.TrimSpace(*req.Name)
		}
		if req.YearOfStudy != nil {
			discipline.YearOfStudy = req.YearOfStudy
		}
		if req.Specialization != nil {
			discipline.Specialization = req.Specialization
		}

		if err := tx.Disciplines().Update(ctx, discipline); err != nil {
			if repositories.IsDuplicateKey(err) {
				return validator.ValidationErrors{{
					Field:   "name",
					Message: "a discipline with this name already exists",
					Value:   discipline.Name,
					Rule:    "unique",
				}}
			}
			return err
		}

		// Teacher links are replaced as a set so partial updates cannot
		// leave a mix of old and new assignments.
		if req.TeacherIDs != nil {
			if err := s.checkTeachers(ctx, tx, req.TeacherIDs); err != nil {
				return err
			}
			return tx.Disciplines().ReplaceTeachers(ctx, id, req.TeacherIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateDisciplineCache(ctx, s.cache, id)
	return s.GetByID(ctx, id)
}

func (s *disciplineService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		live, err := tx.Exams().HasLiveForDiscipline(ctx, id)
		if err != nil {
			return err
		}
		if live {
			return ErrDisciplineHasExams
		}

		if err := tx.Disciplines().ReplaceTeachers(ctx, id, nil); err != nil {
			return err
		}
		if err := tx.Disciplines().Delete(ctx, id); err != nil {
			if repositories.IsNotFound(err) {
				return ErrDisciplineNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateDisciplineCache(ctx, s.cache, id)
	s.logger.Info("discipline deleted", "discipline_id", id)
	return nil
}

func (s *disciplineService) ListForTeacher(ctx context.Context, teacher *models.User) ([]TeacherDisciplineResponse, error) {
	entries, err := s.repo.Disciplines().ListForTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}

	result := make([]TeacherDisciplineResponse, 0, len(entries))
	for _, entry := range entries {
		d := entry.Discipline
		result = append(result, TeacherDisciplineResponse{
			Discipline: &d,
			ExamID:     entry.ExamID,
			ExamStatus: entry.ExamStatus,
			ExamDate:   entry.ExamDate,
			CanPropose: entry.ExamID == nil,
		})
	}
	return result, nil
}

// xlsx column layout: discipline name, teacher full name, teacher email.
// The first row is treated as a header.
const importSheetColumns = 3

// ImportXLSX ingests a spreadsheet of disciplines. Teachers named in the
// sheet are created on the fly when their email is unknown. The whole sheet
// goes through one transaction: a row error is reported and skipped, but a
// storage failure rolls everything back.
func (s *disciplineService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportReport, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportFileMalformed
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportFileMalformed
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportFileMalformed
	}
	if len(rows) < 2 {
		return &ImportReport{}, nil
	}

	report := &ImportReport{}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for i, row := range rows[1:] {
			line := i + 2
			if len(row) < importSheetColumns {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("row %d: expected %d columns", line, importSheetColumns))
				continue
			}

			name := strings.TrimSpace(row[0])
			teacherName := strings.TrimSpace(row[1])
			teacherEmail := strings.ToLower(strings.TrimSpace(row[2]))
			if name == "" || teacherEmail == "" {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("row %d: missing discipline name or teacher email", line))
				continue
			}

			teacher, err := s.findOrCreateTeacher(ctx, tx, teacherName, teacherEmail)
			if err != nil {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}

			discipline, err := tx.Disciplines().GetByName(ctx, name)
			if err != nil {
				if !repositories.IsNotFound(err) {
					return err
				}
				discipline = &models.Discipline{Name: name}
				if err := tx.Disciplines().Create(ctx, discipline); err != nil {
					return err
				}
				report.Created++
			} else {
				report.Skipped++
			}

			assigned, err := tx.Disciplines().IsTeacherAssigned(ctx, discipline.ID, teacher.ID)
			if err != nil {
				return err
			}
			if !assigned {
				current, err := tx.Disciplines().GetByID(ctx, discipline.ID)
				if err != nil {
					return err
				}
				ids := make([]string, 0, len(current.Teachers)+1)
				for _, t := range current.Teachers {
					ids = append(ids, t.ID)
				}
				ids = append(ids, teacher.ID)
				if err := tx.Disciplines().ReplaceTeachers(ctx, discipline.ID, ids); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "*")
	s.logger.Info("discipline import finished",
		"created", report.Created,
		"skipped", report.Skipped,
		"row_errors", len(report.Errors))
	return report, nil
}

func (s *disciplineService) findOrCreateTeacher(ctx context.Context, tx repositories.Repository, name, email string) (*models.User, error) {
	teacher, err := tx.Users().GetByEmail(ctx, email)
	if err == nil {
		return teacher, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, err
	}

	if !strings.HasSuffix(email, staffEmailDomain) || strings.HasSuffix(email, studentEmailDomain) {
		return nil, fmt.Errorf("%s is not a staff email", email)
	}

	if name == "" {
		name = utils.DisplayNameFromEmail(email)
	}
	teacher = &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: name,
		Role:     models.RoleTeacher,
	}
	if err := tx.Users().Create(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *disciplineService) checkTeachers(ctx context.Context, tx repositories.Repository, teacherIDs []string) error {
	for _, id := range teacherIDs {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return validator.ValidationErrors{{
					Field:   "teacher_ids",
					Message: fmt.Sprintf("unknown teacher %s", id),
					Value:   id,
					Rule:    "exists",
				}}
			}
			return err
		}
		if user.Role != models.RoleTeacher && user.Role != models.RoleAdmin {
			return validator.ValidationErrors{{
				Field:   "teacher_ids",
				Message: fmt.Sprintf("user %s is not teaching staff", id),
				Value:   id,
				Rule:    "role",
			}}
		}
	}
	return nil
}
