package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. It enforces
// the same uniqueness rules the database schema does: unique user emails,
// unique discipline names and at most one live exam per discipline.
type mockRepository struct {
	mu sync.Mutex

	users       map[string]*models.User
	disciplines map[uint]*models.Discipline
	assignments map[uint]map[string]bool
	exams       map[uint]*models.Exam
	periods     map[uint]*models.ExamPeriod
	rooms       map[uint]*models.Room

	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[string]*models.User),
		disciplines: make(map[uint]*models.Discipline),
		assignments: make(map[uint]map[string]bool),
		exams:       make(map[uint]*models.Exam),
		periods:     make(map[uint]*models.ExamPeriod),
		rooms:       make(map[uint]*models.Room),
	}
}

func (m *mockRepository) nextSequence() uint {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) Users() repositories.UserRepository             { return &mockUsers{m} }
func (m *mockRepository) Disciplines() repositories.DisciplineRepository { return &mockDisciplines{m} }
func (m *mockRepository) Exams() repositories.ExamRepository             { return &mockExams{m} }
func (m *mockRepository) Periods() repositories.PeriodRepository         { return &mockPeriods{m} }
func (m *mockRepository) Rooms() repositories.RoomRepository             { return &mockRooms{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// seed helpers

func (m *mockRepository) addUser(user *models.User) *models.User {
	m.users[user.ID] = user
	return user
}

func (m *mockRepository) addDiscipline(name string, teacherIDs ...string) *models.Discipline {
	d := &models.Discipline{ID: m.nextSequence(), Name: name}
	m.disciplines[d.ID] = d
	m.assignments[d.ID] = make(map[string]bool)
	for _, id := range teacherIDs {
		m.assignments[d.ID][id] = true
	}
	return d
}

func (m *mockRepository) addActivePeriod(start, end time.Time) *models.ExamPeriod {
	p := &models.ExamPeriod{ID: m.nextSequence(), StartDate: start, EndDate: end, IsActive: true}
	m.periods[p.ID] = p
	return p
}

// ===== users =====

type mockUsers struct{ m *mockRepository }

func (r *mockUsers) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == user.Email || existing.ID == user.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.m.users[user.ID] = user
	return nil
}

func (r *mockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if user, ok := r.m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUsers) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []models.User
	for _, user := range r.m.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

func (r *mockUsers) UpdateDetails(ctx context.Context, id string, patch repositories.UserDetailsPatch) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyDetailsPatch(user, patch)
	return nil
}

func (r *mockUsers) AdminUpdate(ctx context.Context, id string, patch repositories.AdminUserPatch) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if patch.Email != nil {
		for otherID, other := range r.m.users {
			if otherID != id && other.Email == *patch.Email {
				return gorm.ErrDuplicatedKey
			}
		}
		user.Email = *patch.Email
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	applyDetailsPatch(user, patch.UserDetailsPatch)
	return nil
}

func (r *mockUsers) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.users, id)
	return nil
}

func applyDetailsPatch(user *models.User, patch repositories.UserDetailsPatch) {
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.SetStudentGroup {
		user.StudentGroup = patch.StudentGroup
	}
	if patch.SetYearOfStudy {
		user.YearOfStudy = patch.YearOfStudy
	}
}

// ===== disciplines =====

type mockDisciplines struct{ m *mockRepository }

func (r *mockDisciplines) Create(ctx context.Context, discipline *models.Discipline) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.disciplines {
		if existing.Name == discipline.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	discipline.ID = r.m.nextSequence()
	r.m.disciplines[discipline.ID] = discipline
	r.m.assignments[discipline.ID] = make(map[string]bool)
	return nil
}

func (r *mockDisciplines) GetByID(ctx context.Context, id uint) (*models.Discipline, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	discipline, ok := r.m.disciplines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *discipline
	copied.Teachers = nil
	for teacherID := range r.m.assignments[id] {
		if user, ok := r.m.users[teacherID]; ok {
			copied.Teachers = append(copied.Teachers, *user)
		}
	}
	return &copied, nil
}

func (r *mockDisciplines) GetByName(ctx context.Context, name string) (*models.Discipline, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, discipline := range r.m.disciplines {
		if discipline.Name == name {
			copied := *discipline
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockDisciplines) List(ctx context.Context, filter repositories.DisciplineFilter) ([]models.Discipline, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []models.Discipline
	for _, discipline := range r.m.disciplines {
		result = append(result, *discipline)
	}
	return result, nil
}

func (r *mockDisciplines) Update(ctx context.Context, discipline *models.Discipline) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.disciplines[discipline.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.disciplines[discipline.ID] = discipline
	return nil
}

func (r *mockDisciplines) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.disciplines[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.disciplines, id)
	delete(r.m.assignments, id)
	return nil
}

func (r *mockDisciplines) ReplaceTeachers(ctx context.Context, disciplineID uint, teacherIDs []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	links := make(map[string]bool, len(teacherIDs))
	for _, id := range teacherIDs {
		links[id] = true
	}
	r.m.assignments[disciplineID] = links
	return nil
}

func (r *mockDisciplines) IsTeacherAssigned(ctx context.Context, disciplineID uint, teacherID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.assignments[disciplineID][teacherID], nil
}

func (r *mockDisciplines) ListForTeacher(ctx context.Context, teacherID string) ([]repositories.TeacherDiscipline, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []repositories.TeacherDiscipline
	for id, links := range r.m.assignments {
		if !links[teacherID] {
			continue
		}
		entry := repositories.TeacherDiscipline{Discipline: *r.m.disciplines[id]}
		for _, exam := range r.m.exams {
			if exam.DisciplineID == id && exam.Status != models.ExamRejected {
				examID := exam.ID
				status := exam.Status
				date := exam.ExamDate
				entry.ExamID = &examID
				entry.ExamStatus = &status
				entry.ExamDate = &date
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// ===== exams =====

type mockExams struct{ m *mockRepository }

func (r *mockExams) Create(ctx context.Context, exam *models.Exam) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.exams {
		if existing.DisciplineID == exam.DisciplineID && existing.Status != models.ExamRejected {
			return gorm.ErrDuplicatedKey
		}
	}
	exam.ID = r.m.nextSequence()
	exam.CreatedAt = time.Now()
	r.m.exams[exam.ID] = exam
	return nil
}

func (r *mockExams) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	exam, ok := r.m.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *exam
	if discipline, ok := r.m.disciplines[exam.DisciplineID]; ok {
		d := *discipline
		copied.Discipline = &d
	}
	return &copied, nil
}

func (r *mockExams) HasLiveForDiscipline(ctx context.Context, disciplineID uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, exam := range r.m.exams {
		if exam.DisciplineID == disciplineID && exam.Status != models.ExamRejected {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockExams) Decide(ctx context.Context, id uint, status models.ExamStatus) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	exam, ok := r.m.exams[id]
	if !ok || exam.Status != models.ExamProposed {
		return 0, nil
	}
	now := time.Now()
	exam.Status = status
	exam.DecidedAt = &now
	return 1, nil
}

func (r *mockExams) AssignRoom(ctx context.Context, id uint, roomID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	exam, ok := r.m.exams[id]
	if !ok || exam.Status != models.ExamApproved {
		return gorm.ErrRecordNotFound
	}
	exam.RoomID = &roomID
	return nil
}

func (r *mockExams) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, exam := range r.m.exams {
		if exam.RoomID != nil && *exam.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (r *mockExams) ListProposals(ctx context.Context) ([]repositories.ProposalRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var rows []repositories.ProposalRow
	for _, exam := range r.m.exams {
		if exam.Status != models.ExamProposed {
			continue
		}
		row := repositories.ProposalRow{
			ExamID:       exam.ID,
			DisciplineID: exam.DisciplineID,
			ExamDate:     exam.ExamDate,
			ProposedAt:   exam.CreatedAt,
		}
		if discipline, ok := r.m.disciplines[exam.DisciplineID]; ok {
			row.DisciplineName = discipline.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *mockExams) ListSchedule(ctx context.Context, filter repositories.ExamFilter) ([]repositories.ScheduleRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	status := filter.Status
	if status == "" {
		status = models.ExamApproved
	}
	var rows []repositories.ScheduleRow
	for _, exam := range r.m.exams {
		if exam.Status != status {
			continue
		}
		if filter.From != nil && exam.ExamDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && exam.ExamDate.After(*filter.To) {
			continue
		}
		row := repositories.ScheduleRow{
			ExamID:       exam.ID,
			DisciplineID: exam.DisciplineID,
			ExamDate:     exam.ExamDate,
		}
		if discipline, ok := r.m.disciplines[exam.DisciplineID]; ok {
			row.DisciplineName = discipline.Name
			row.YearOfStudy = discipline.YearOfStudy
		}
		if filter.YearOfStudy != nil {
			if row.YearOfStudy == nil || *row.YearOfStudy != *filter.YearOfStudy {
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ===== periods =====

type mockPeriods struct{ m *mockRepository }

func (r *mockPeriods) Create(ctx context.Context, period *models.ExamPeriod) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	period.ID = r.m.nextSequence()
	r.m.periods[period.ID] = period
	return nil
}

func (r *mockPeriods) GetByID(ctx context.Context, id uint) (*models.ExamPeriod, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	period, ok := r.m.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *period
	return &copied, nil
}

func (r *mockPeriods) List(ctx context.Context) ([]models.ExamPeriod, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []models.ExamPeriod
	for _, period := range r.m.periods {
		result = append(result, *period)
	}
	return result, nil
}

func (r *mockPeriods) SetActive(ctx context.Context, id uint, active bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	period, ok := r.m.periods[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	period.IsActive = active
	return nil
}

func (r *mockPeriods) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.periods[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.periods, id)
	return nil
}

func (r *mockPeriods) AnyActiveCovering(ctx context.Context, date time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, period := range r.m.periods {
		if period.IsActive && period.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

// ===== rooms =====

type mockRooms struct{ m *mockRepository }

func (r *mockRooms) Create(ctx context.Context, room *models.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.rooms {
		if existing.Name == room.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	room.ID = r.m.nextSequence()
	r.m.rooms[room.ID] = room
	return nil
}

func (r *mockRooms) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *mockRooms) List(ctx context.Context) ([]models.Room, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []models.Room
	for _, room := range r.m.rooms {
		result = append(result, *room)
	}
	return result, nil
}

func (r *mockRooms) Update(ctx context.Context, room *models.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[room.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.rooms[room.ID] = room
	return nil
}

func (r *mockRooms) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.rooms, id)
	return nil
}
