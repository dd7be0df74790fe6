package services

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_CreateAndSaveConfiguration(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	svc := f.manager.Block()

	instance, err := svc.CreateBlock(f.ctx, teacherPrincipal, testCourse, &CreateBlockRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBlockTitle, instance.Title)
	assert.True(t, instance.Open)
	assert.False(t, instance.Configured())

	saved, err := svc.SaveConfiguration(f.ctx, teacherPrincipal, testCourse, instance.ID, &SaveBlockRequest{
		Title:       "Week 4",
		SurveyID:    b.survey.ID,
		Group:       "all",
		QuestionIDs: []uint{b.ids["q5"], b.ids["q2"], b.ids["q2"]},
		Open:        boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Week 4", saved.Title)
	assert.Equal(t, testTeacher, saved.TeacherID)
	assert.Equal(t, models.FormatIDList([]uint{b.ids["q2"], b.ids["q5"]}), saved.QuestionsCSV)
	assert.False(t, saved.Open)

	teacherSurvey, err := f.repo.BlockInstance().GetTeacherSurvey(f.ctx, nil, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, b.survey.ID, teacherSurvey.SurveyID)
	assert.Equal(t, testTeacher, teacherSurvey.TeacherID)

	copies, err := f.repo.BlockInstance().ListSurveyQuestions(f.ctx, nil, instance.ID)
	require.NoError(t, err)
	var copied []uint
	for _, c := range copies {
		copied = append(copied, c.QuestionID)
	}
	assert.ElementsMatch(t, []uint{b.ids["m1"], b.ids["q2"], b.ids["m4"], b.ids["q5"]}, copied)

	configured := f.publisher.EventsOfType(events.EventBlockConfigured)
	require.Len(t, configured, 1)
	payload, ok := configured[0].Data.(events.BlockConfiguredEvent)
	require.True(t, ok)
	assert.Equal(t, "all", payload.Audience)
	assert.Len(t, payload.QuestionIDs, 4)
}

func TestBlock_SaveConfigurationRewritesCopies(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance, err := f.manager.Block().CreateBlock(f.ctx, teacherPrincipal, testCourse, nil)
	require.NoError(t, err)

	for _, selected := range [][]uint{{b.ids["q2"], b.ids["q3"]}, {}} {
		_, err := f.manager.Block().SaveConfiguration(f.ctx, teacherPrincipal, testCourse, instance.ID, &SaveBlockRequest{
			SurveyID:    b.survey.ID,
			QuestionIDs: selected,
		})
		require.NoError(t, err)
	}

	copies, err := f.repo.BlockInstance().ListSurveyQuestions(f.ctx, nil, instance.ID)
	require.NoError(t, err)
	assert.Len(t, copies, 2)
}

func TestBlock_SaveConfigurationValidation(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	other := f.seedBank(t)
	f.enrolStudents(t, "s1")
	instance, err := f.manager.Block().CreateBlock(f.ctx, teacherPrincipal, testCourse, nil)
	require.NoError(t, err)

	inactive, err := models.NewSurvey("Retired", "", models.FormatThumbs, true)
	require.NoError(t, err)
	require.NoError(t, f.repo.Survey().Create(f.ctx, nil, inactive))
	inactive.Active = false
	require.NoError(t, f.repo.Survey().Update(f.ctx, nil, inactive))

	foreignGroup := &models.Group{CourseID: testCourse + 1, Name: "Elsewhere"}
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, foreignGroup))
	foreignGrouping := &models.Grouping{CourseID: testCourse + 1, Name: "Elsewhere"}
	require.NoError(t, f.repo.Membership().CreateGrouping(f.ctx, nil, foreignGrouping))

	fieldError := func(field string) func(t *testing.T, err error) {
		return func(t *testing.T, err error) {
			var errs ValidationErrors
			require.True(t, errors.As(err, &errs), err)
			require.Len(t, errs, 1)
			assert.Equal(t, field, errs[0].Field)
		}
	}

	tests := []struct {
		name  string
		req   *SaveBlockRequest
		check func(t *testing.T, err error)
	}{
		{
			name:  "question from another survey",
			req:   &SaveBlockRequest{SurveyID: b.survey.ID, QuestionIDs: []uint{other.ids["q2"]}},
			check: fieldError("question_ids"),
		},
		{
			name: "group of another course",
			req:  &SaveBlockRequest{SurveyID: b.survey.ID, Group: models.Audience{Kind: models.AudienceGroup, ID: foreignGroup.ID}.String()},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrGroupNotFound)
			},
		},
		{
			name: "grouping of another course",
			req:  &SaveBlockRequest{SurveyID: b.survey.ID, Group: models.Audience{Kind: models.AudienceGrouping, ID: foreignGrouping.ID}.String()},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrGroupNotFound)
			},
		},
		{
			name: "unknown group",
			req:  &SaveBlockRequest{SurveyID: b.survey.ID, Group: "group-9999"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrGroupNotFound)
			},
		},
		{
			name: "malformed audience",
			req:  &SaveBlockRequest{SurveyID: b.survey.ID, Group: "group-abc"},
			check: func(t *testing.T, err error) {
				assert.True(t, IsValidation(err))
			},
		},
		{
			name:  "teacher without authoring role",
			req:   &SaveBlockRequest{SurveyID: b.survey.ID, TeacherID: "s1"},
			check: fieldError("teacher_id"),
		},
		{
			name: "unknown survey",
			req:  &SaveBlockRequest{SurveyID: 9999},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSurveyNotFound)
			},
		},
		{
			name: "deleted survey",
			req:  &SaveBlockRequest{SurveyID: inactive.ID},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSurveyInactive)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Block().SaveConfiguration(f.ctx, teacherPrincipal, testCourse, instance.ID, tt.req)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	stored, err := f.repo.BlockInstance().GetByID(f.ctx, nil, instance.ID)
	require.NoError(t, err)
	assert.False(t, stored.Configured())
	assert.Empty(t, f.publisher.EventsOfType(events.EventBlockConfigured))
}

func TestBlock_RequiresCourseStaff(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	f.enrolStudents(t, "s1")

	_, err := f.manager.Block().CreateBlock(f.ctx, Principal{UserID: "s1"}, testCourse, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.manager.Block().CreateBlock(f.ctx, adminPrincipal, testCourse, nil)
	assert.NoError(t, err)

	_, err = f.manager.Block().ListBlocks(f.ctx, Principal{}, testCourse)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBlock_GetConfigurationMarksChecked(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance := f.seedBlock(t, b, "all", "q3")

	group := &models.Group{CourseID: testCourse, Name: "Lab"}
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, group))
	grouping := &models.Grouping{CourseID: testCourse, Name: "Streams"}
	require.NoError(t, f.repo.Membership().CreateGrouping(f.ctx, nil, grouping))

	config, err := f.manager.Block().GetConfiguration(f.ctx, teacherPrincipal, testCourse, instance.ID)
	require.NoError(t, err)
	require.NotNil(t, config.Survey)
	assert.Len(t, config.Surveys, 1)

	checked := map[uint]bool{}
	for _, section := range config.Survey.Sections {
		for _, q := range section.Questions {
			checked[q.ID] = q.Checked
		}
	}
	assert.True(t, checked[b.ids["m1"]])
	assert.False(t, checked[b.ids["q2"]])
	assert.True(t, checked[b.ids["q3"]])
	assert.True(t, checked[b.ids["m4"]])
	assert.False(t, checked[b.ids["q5"]])

	assert.Equal(t, []models.AudienceOption{
		{Value: "all", Label: "All participants"},
		{Value: models.Audience{Kind: models.AudienceGroup, ID: group.ID}.String(), Label: "Group: Lab"},
		{Value: models.Audience{Kind: models.AudienceGrouping, ID: grouping.ID}.String(), Label: "Grouping: Streams"},
	}, config.AudienceOptions)
}

func TestBlock_DeleteRemovesResponses(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance := f.seedBlock(t, b, "all")
	f.enrolStudents(t, "s1")
	f.answer(t, instance.ID, "s1", b.ids["m1"], "1")

	err := f.manager.Block().DeleteBlock(f.ctx, teacherPrincipal, testCourse+1, instance.ID)
	assert.Error(t, err)

	require.NoError(t, f.manager.Block().DeleteBlock(f.ctx, teacherPrincipal, testCourse, instance.ID))

	_, err = f.repo.BlockInstance().GetByID(f.ctx, nil, instance.ID)
	assert.True(t, repositories.IsNotFoundError(err))
	answers, err := f.repo.Response().ListAnswers(f.ctx, nil, instance.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, answers)
}
