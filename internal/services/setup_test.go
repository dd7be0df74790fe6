package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/voice-service/internal/testutil"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testCourse  uint = 100
	testTeacher      = "teacher-1"
	testAdmin        = "admin-1"
)

var (
	adminPrincipal   = Principal{UserID: testAdmin, SiteAdmin: true}
	teacherPrincipal = Principal{UserID: testTeacher}
)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	repo      *postgres.Repository
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	roles     RoleConfig
	manager   ServiceManager
}

func newFixture(t *testing.T, policy models.OrderPolicy) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		repo:      postgres.NewRepository(db),
		publisher: events.NewMockEventPublisher(logger),
		validator: validator.New(),
		logger:    logger,
		roles: RoleConfig{
			StudentRole:    "student",
			AuthoringRoles: []string{"editingteacher", "teacher", "manager"},
		},
	}
	f.manager = NewServiceManager(f.repo, nil, f.publisher, f.validator, logger, ManagerConfig{
		Roles:       f.roles,
		OrderPolicy: policy,
	})
	f.enrol(t, testTeacher, "editingteacher")
	return f
}

// submission returns a submission service whose shuffle is replaced.
func (f *fixture) submission(shuffle Shuffler, policy models.OrderPolicy) *submissionService {
	svc := NewSubmissionService(f.repo, f.manager.Resolver(), f.publisher, f.validator, policy, NewServiceLogger(f.logger, "submission")).(*submissionService)
	if shuffle != nil {
		svc.shuffle = shuffle
	}
	return svc
}

func (f *fixture) enrol(t *testing.T, userID, role string) {
	t.Helper()
	require.NoError(t, f.repo.Membership().UpsertUser(f.ctx, nil, &models.User{ID: userID, FullName: "User " + userID}))
	require.NoError(t, f.repo.Membership().Enrol(f.ctx, nil, &models.CourseEnrolment{CourseID: testCourse, UserID: userID, Role: role}))
}

func (f *fixture) enrolStudents(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		f.enrol(t, id, "student")
	}
}

// bank is a survey with two sections:
//
//	Attitudes: m1 (mandatory), q2, q3
//	Teaching:  m4 (mandatory), q5
type bank struct {
	survey *models.Survey
	ids    map[string]uint
}

func (f *fixture) seedBank(t *testing.T) *bank {
	t.Helper()

	survey, err := models.NewSurvey("Course feedback", "Tell us", models.FormatLikert, true)
	require.NoError(t, err)
	survey.Seq = 1
	require.NoError(t, f.repo.Survey().Create(f.ctx, nil, survey))

	b := &bank{survey: survey, ids: map[string]uint{}}
	layout := []struct {
		section   string
		questions []string
	}{
		{"Attitudes", []string{"m1", "q2", "q3"}},
		{"Teaching", []string{"m4", "q5"}},
	}
	for i, s := range layout {
		section, err := models.NewSection(survey.ID, s.section)
		require.NoError(t, err)
		section.Seq = i + 1
		require.NoError(t, f.repo.Section().Create(f.ctx, nil, section))

		for j, name := range s.questions {
			q, err := models.NewQuestion(section.ID, name, "Question "+name, name[0] == 'm')
			require.NoError(t, err)
			q.Seq = j + 1
			require.NoError(t, f.repo.Question().Create(f.ctx, nil, q))
			b.ids[name] = q.ID
		}
	}
	return b
}

// seedBlock places a configured, open block in the test course.
func (f *fixture) seedBlock(t *testing.T, b *bank, group string, selected ...string) *models.BlockInstance {
	t.Helper()

	instance, err := models.NewBlockInstance(testCourse, "Voice")
	require.NoError(t, err)
	instance.SurveyID = b.survey.ID
	instance.GroupSel = group
	instance.TeacherID = testTeacher

	ids := make([]uint, 0, len(selected))
	for _, name := range selected {
		ids = append(ids, b.ids[name])
	}
	instance.QuestionsCSV = models.FormatIDList(ids)
	require.NoError(t, f.repo.BlockInstance().Create(f.ctx, nil, instance))
	return instance
}

func (f *fixture) answer(t *testing.T, instanceID uint, userID string, questionID uint, value string) {
	t.Helper()
	ok, err := f.manager.Submission().SubmitAnswer(f.ctx, Principal{UserID: userID}, &SubmitAnswerRequest{
		InstanceID:    instanceID,
		QuestionID:    questionID,
		ResponseValue: value,
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func reverseShuffle(ids []uint) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
