package services

import (
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicableQuestions(t *testing.T) {
	survey := &models.Survey{
		Sections: []models.Section{
			{ID: 2, Seq: 2, Questions: []models.Question{
				{ID: 21, Seq: 2},
				{ID: 20, Seq: 1, Mandatory: true},
			}},
			{ID: 1, Seq: 1, Questions: []models.Question{
				{ID: 10, Seq: 1},
				{ID: 11, Seq: 2},
			}},
		},
	}

	got := ApplicableQuestions(survey, []uint{21, 10, 99})

	ids := make([]uint, len(got))
	for i, q := range got {
		ids[i] = q.ID
	}
	assert.Equal(t, []uint{10, 20, 21}, ids)
	assert.Equal(t, uint(2), survey.Sections[0].ID, "input must not be reordered")
}

func TestResolveQuestions(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance := f.seedBlock(t, b, "all", "q3")

	resolved, err := f.manager.Resolver().ResolveQuestions(f.ctx, nil, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ids["m1"], b.ids["q3"], b.ids["m4"]}, resolved.QuestionIDs())
	assert.True(t, resolved.Applicable(b.ids["q3"]))
	assert.False(t, resolved.Applicable(b.ids["q2"]))

	_, err = f.manager.Resolver().ResolveQuestions(f.ctx, nil, 9999)
	assert.ErrorIs(t, err, ErrBlockInstanceNotFound)

	instance.SurveyID = 9999
	require.NoError(t, f.repo.BlockInstance().Update(f.ctx, nil, instance))
	_, err = f.manager.Resolver().ResolveQuestions(f.ctx, nil, instance.ID)
	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestResolveAudience(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	f.enrolStudents(t, "s3", "s1", "s2")
	// s2 also holds a teaching role and is never a respondent
	f.enrol(t, "s2", "teacher")

	groupA := &models.Group{CourseID: testCourse, Name: "A"}
	groupB := &models.Group{CourseID: testCourse, Name: "B"}
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, groupA))
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, groupB))
	for _, m := range []struct {
		group uint
		user  string
	}{
		{groupA.ID, "s1"}, {groupA.ID, testTeacher}, {groupB.ID, "s1"}, {groupB.ID, "s3"},
	} {
		require.NoError(t, f.repo.Membership().AddGroupMember(f.ctx, nil, m.group, m.user))
	}

	grouping := &models.Grouping{CourseID: testCourse, Name: "All groups"}
	require.NoError(t, f.repo.Membership().CreateGrouping(f.ctx, nil, grouping))
	require.NoError(t, f.repo.Membership().AddGroupToGrouping(f.ctx, nil, grouping.ID, groupA.ID))
	require.NoError(t, f.repo.Membership().AddGroupToGrouping(f.ctx, nil, grouping.ID, groupB.ID))

	// A group of another course never widens this course's audience.
	foreign := &models.Group{CourseID: testCourse + 1, Name: "Elsewhere"}
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, foreign))
	require.NoError(t, f.repo.Membership().AddGroupMember(f.ctx, nil, foreign.ID, "outsider"))
	foreignGrouping := &models.Grouping{CourseID: testCourse + 1, Name: "Elsewhere"}
	require.NoError(t, f.repo.Membership().CreateGrouping(f.ctx, nil, foreignGrouping))
	require.NoError(t, f.repo.Membership().AddGroupToGrouping(f.ctx, nil, foreignGrouping.ID, foreign.ID))

	tests := []struct {
		selector string
		want     []string
	}{
		{"all", []string{"s1", "s3"}},
		{models.Audience{Kind: models.AudienceGroup, ID: groupA.ID}.String(), []string{"s1"}},
		{models.Audience{Kind: models.AudienceGrouping, ID: grouping.ID}.String(), []string{"s1", "s3"}},
		{"", []string{}},
		{"group-x", []string{}},
		{models.Audience{Kind: models.AudienceGroup, ID: foreign.ID}.String(), []string{}},
		{models.Audience{Kind: models.AudienceGrouping, ID: foreignGrouping.ID}.String(), []string{}},
		{"group-9999", []string{}},
	}

	for _, tt := range tests {
		t.Run("selector "+tt.selector, func(t *testing.T) {
			instance := &models.BlockInstance{CourseID: testCourse, GroupSel: tt.selector}
			got, err := f.manager.Resolver().ResolveAudience(f.ctx, nil, instance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSurveyStructure_UsesCache(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	c := newMemoryCache()
	resolver := NewResolver(f.repo, c, f.roles, NewServiceLogger(f.logger, "resolver"))

	first, err := resolver.SurveyStructure(f.ctx, nil, b.survey.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	second, err := resolver.SurveyStructure(f.ctx, nil, b.survey.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)
	assert.Same(t, first, second)
}

func TestCatalogWritesInvalidateStructure(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	c := newMemoryCache()
	resolver := NewResolver(f.repo, c, f.roles, NewServiceLogger(f.logger, "resolver"))
	catalog := NewCatalogService(f.repo, resolver, c, f.validator, NewServiceLogger(f.logger, "catalog"))

	survey, err := catalog.CreateSurvey(f.ctx, adminPrincipal, &CreateSurveyRequest{Name: "A", Format: "thumbs"})
	require.NoError(t, err)
	_, err = catalog.GetSurvey(f.ctx, survey.ID)
	require.NoError(t, err)
	require.Contains(t, c.surveys, survey.ID)

	_, err = catalog.CreateSection(f.ctx, adminPrincipal, survey.ID, &SectionRequest{Name: "S"})
	require.NoError(t, err)
	assert.NotContains(t, c.surveys, survey.ID)

	structure, err := catalog.GetSurvey(f.ctx, survey.ID)
	require.NoError(t, err)
	assert.Len(t, structure.Sections, 1)
}
