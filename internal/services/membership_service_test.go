package services

import (
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembership_GroupsAndGroupings(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	svc := f.manager.Membership()

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := svc.UpsertUser(f.ctx, adminPrincipal, &UserRequest{ID: id, FullName: "Student " + id})
		require.NoError(t, err)
		_, err = svc.Enrol(f.ctx, adminPrincipal, testCourse, &EnrolmentRequest{UserID: id, Role: "student"})
		require.NoError(t, err)
	}

	red, err := svc.CreateGroup(f.ctx, adminPrincipal, testCourse, &GroupRequest{Name: "Red", Members: []string{"s1", "s2"}})
	require.NoError(t, err)
	blue, err := svc.CreateGroup(f.ctx, adminPrincipal, testCourse, &GroupRequest{Name: "Blue"})
	require.NoError(t, err)
	require.NoError(t, svc.AddGroupMember(f.ctx, adminPrincipal, blue.ID, "s3"))

	grouping, err := svc.CreateGrouping(f.ctx, adminPrincipal, testCourse, &GroupingRequest{Name: "Colours", GroupIDs: []uint{red.ID, blue.ID}})
	require.NoError(t, err)

	members, err := f.repo.Membership().GroupingMembers(f.ctx, nil, grouping.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, members)

	groups, err := svc.ListGroups(f.ctx, adminPrincipal, testCourse)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	groupings, err := svc.ListGroupings(f.ctx, adminPrincipal, testCourse)
	require.NoError(t, err)
	assert.Len(t, groupings, 1)

	require.NoError(t, svc.Unenrol(f.ctx, adminPrincipal, testCourse, "s3", "student"))
	students, err := f.repo.Membership().UsersWithRoles(f.ctx, nil, testCourse, []string{"student"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, students)
}

func TestMembership_Rejections(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	svc := f.manager.Membership()

	_, err := svc.CreateGroup(f.ctx, teacherPrincipal, testCourse, &GroupRequest{Name: "Red"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpsertUser(f.ctx, adminPrincipal, &UserRequest{ID: "x", FullName: "X", Email: "not-an-email"})
	assert.True(t, IsValidation(err))

	err = svc.AddGroupMember(f.ctx, adminPrincipal, 999, "s1")
	assert.ErrorIs(t, err, ErrGroupNotFound)

	foreign := &models.Group{CourseID: testCourse + 1, Name: "Elsewhere"}
	require.NoError(t, f.repo.Membership().CreateGroup(f.ctx, nil, foreign))
	_, err = svc.CreateGrouping(f.ctx, adminPrincipal, testCourse, &GroupingRequest{Name: "G", GroupIDs: []uint{foreign.ID}})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	groupings, err := svc.ListGroupings(f.ctx, adminPrincipal, testCourse)
	require.NoError(t, err)
	assert.Empty(t, groupings)
}
