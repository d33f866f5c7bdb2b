package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/events"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
	publisher events.EventPublisher
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager, publisher events.EventPublisher) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
		publisher: publisher,
	}
}

// Propose creates a PROPOSED exam. All checks and the insert share one
// transaction, and the partial unique index on live exams backstops the
// duplicate check under concurrent proposals.
func (s *examService) Propose(ctx context.Context, req *ExamProposalRequest, actor *models.User) (*ExamResponse, error) {
	date, errs := s.validator.ValidateExamProposal(req)
	if errs.HasErrors() {
		return nil, errs
	}

	var exam *models.Exam
	var discipline *models.Discipline

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		discipline, err = tx.Disciplines().GetByID(ctx, req.DisciplineID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrDisciplineNotFound
			}
			return err
		}

		if actor.Role != models.RoleAdmin {
			assigned, err := tx.Disciplines().IsTeacherAssigned(ctx, discipline.ID, actor.ID)
			if err != nil {
				return err
			}
			if !assigned {
				return NewPermissionError(actor.ID, "propose exam", "not assigned to this discipline")
			}
		}

		covered, err := tx.Periods().AnyActiveCovering(ctx, date)
		if err != nil {
			return err
		}
		if !covered {
			return ErrDateOutsidePeriod
		}

		live, err := tx.Exams().HasLiveForDiscipline(ctx, discipline.ID)
		if err != nil {
			return err
		}
		if live {
			return ErrDuplicateProposal
		}

		exam = &models.Exam{
			DisciplineID: discipline.ID,
			ExamDate:     date,
			Status:       models.ExamProposed,
		}
		if err := tx.Exams().Create(ctx, exam); err != nil {
			// A concurrent proposal slipped between the check and the
			// insert; the index turned it into a duplicate-key failure.
			if repositories.IsDuplicateKey(err) {
				return ErrDuplicateProposal
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterExamMutation(ctx, events.TopicExamProposed, exam, discipline, actor.ID)
	s.logger.Info("exam proposed",
		"exam_id", exam.ID,
		"discipline_id", discipline.ID,
		"proposer_id", actor.ID)

	exam.Discipline = discipline
	return &ExamResponse{Exam: exam, CanDecide: true}, nil
}

// Decide settles a proposal exactly once. The conditional update matches
// only rows still in PROPOSED, so a lost race surfaces as zero rows and the
// re-read tells a missing exam apart from one already decided.
func (s *examService) Decide(ctx context.Context, examID uint, req *ExamDecisionRequest, actor *models.User) (*ExamResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	var exam *models.Exam
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		rows, err := tx.Exams().Decide(ctx, examID, req.Status)
		if err != nil {
			return err
		}
		if rows == 0 {
			if _, err := tx.Exams().GetByID(ctx, examID); err != nil {
				if repositories.IsNotFound(err) {
					return ErrExamNotFound
				}
				return err
			}
			return ErrAlreadyDecided
		}

		exam, err = tx.Exams().GetByID(ctx, examID)
		return err
	})
	if err != nil {
		return nil, err
	}

	topic := events.TopicExamApproved
	if req.Status == models.ExamRejected {
		topic = events.TopicExamRejected
	}
	s.afterExamMutation(ctx, topic, exam, exam.Discipline, actor.ID)
	s.logger.Info("exam decided",
		"exam_id", exam.ID,
		"status", exam.Status,
		"decided_by", actor.ID)

	return &ExamResponse{Exam: exam}, nil
}

func (s *examService) GetByID(ctx context.Context, examID uint) (*ExamResponse, error) {
	exam, err := s.repo.Exams().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return &ExamResponse{Exam: exam, CanDecide: exam.Status == models.ExamProposed}, nil
}

func (s *examService) AssignRoom(ctx context.Context, examID uint, req *RoomAssignRequest, actor *models.User) (*ExamResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	var exam *models.Exam
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Rooms().GetByID(ctx, req.RoomID); err != nil {
			if repositories.IsNotFound(err) {
				return ErrRoomNotFound
			}
			return err
		}

		if err := tx.Exams().AssignRoom(ctx, examID, req.RoomID); err != nil {
			if repositories.IsNotFound(err) {
				if _, gerr := tx.Exams().GetByID(ctx, examID); gerr != nil {
					if repositories.IsNotFound(gerr) {
						return ErrExamNotFound
					}
					return gerr
				}
				return ErrExamNotApproved
			}
			return err
		}

		var err error
		exam, err = tx.Exams().GetByID(ctx, examID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Schedule, "*")
	s.logger.Info("room assigned", "exam_id", examID, "room_id", req.RoomID, "actor_id", actor.ID)
	return &ExamResponse{Exam: exam}, nil
}

func (s *examService) ListProposals(ctx context.Context) (*ProposalListResponse, error) {
	var rows []repositories.ProposalRow
	err := s.cache.Proposal.CacheOrExecute(ctx, "list", &rows, cache.ProposalCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Exams().ListProposals(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &ProposalListResponse{Proposals: rows, Total: len(rows)}, nil
}

func (s *examService) ListSchedule(ctx context.Context, filter repositories.ExamFilter) (*ScheduleResponse, error) {
	var rows []repositories.ScheduleRow
	key := scheduleCacheKey(filter)
	err := s.cache.Schedule.CacheOrExecute(ctx, key, &rows, cache.ScheduleCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Exams().ListSchedule(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return &ScheduleResponse{Exams: rows, Total: len(rows)}, nil
}

// StudentSchedule narrows the approved schedule to the student's year of
// study. The study group must be filled in first so the listing is
// meaningful for the caller.
func (s *examService) StudentSchedule(ctx context.Context, student *models.User) (*ScheduleResponse, error) {
	if student.StudentGroup == nil || *student.StudentGroup == "" {
		return nil, ErrProfileIncomplete
	}

	filter := repositories.ExamFilter{Status: models.ExamApproved}
	if student.YearOfStudy != nil {
		filter.YearOfStudy = student.YearOfStudy
	}
	return s.ListSchedule(ctx, filter)
}

// Finalize deactivates a period and announces its approved schedule.
func (s *examService) Finalize(ctx context.Context, req *FinalizeScheduleRequest, actor *models.User) (*FinalizeReport, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	var report *FinalizeReport
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		period, err := tx.Periods().GetByID(ctx, req.PeriodID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrPeriodNotFound
			}
			return err
		}

		rows, err := tx.Exams().ListSchedule(ctx, repositories.ExamFilter{
			Status: models.ExamApproved,
			From:   &period.StartDate,
			To:     &period.EndDate,
		})
		if err != nil {
			return err
		}

		if err := tx.Periods().SetActive(ctx, period.ID, false); err != nil {
			return err
		}

		report = &FinalizeReport{PeriodID: period.ID, ApprovedExams: len(rows)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicScheduleFinalized, events.ScheduleFinalizedEvent{
		PeriodID:      report.PeriodID,
		ApprovedExams: report.ApprovedExams,
		FinalizedBy:   actor.ID,
	}); err != nil {
		s.logger.Error("failed to publish schedule.finalized", "error", err, "period_id", report.PeriodID)
	}
	cache.SafeInvalidatePattern(ctx, s.cache.Schedule, "*")
	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "period:*")

	s.logger.Info("schedule finalized",
		"period_id", report.PeriodID,
		"approved_exams", report.ApprovedExams,
		"actor_id", actor.ID)
	return report, nil
}

// afterExamMutation runs the post-commit bookkeeping shared by every exam
// state change: emit the event and drop stale projections.
func (s *examService) afterExamMutation(ctx context.Context, topic string, exam *models.Exam, discipline *models.Discipline, actorID string) {
	event := events.ExamEvent{
		ExamID:       exam.ID,
		DisciplineID: exam.DisciplineID,
		ExamDate:     exam.ExamDate,
		Status:       string(exam.Status),
		ActorID:      actorID,
	}
	if discipline != nil {
		event.DisciplineName = discipline.Name
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("failed to publish exam event", "error", err, "topic", topic, "exam_id", exam.ID)
	}

	if err := s.cache.InvalidateExamProjections(ctx, exam.DisciplineID); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err, "exam_id", exam.ID)
	}
}

func scheduleCacheKey(filter repositories.ExamFilter) string {
	key := "list"
	if filter.Status != "" {
		key += ":status:" + string(filter.Status)
	}
	if filter.DisciplineID != nil {
		key += fmt.Sprintf(":discipline:%d", *filter.DisciplineID)
	}
	if filter.YearOfStudy != nil {
		key += fmt.Sprintf(":year:%d", *filter.YearOfStudy)
	}
	if filter.From != nil {
		key += ":from:" + filter.From.Format(validator.DateLayout)
	}
	if filter.To != nil {
		key += ":to:" + filter.To.Format(validator.DateLayout)
	}
	return key
}
