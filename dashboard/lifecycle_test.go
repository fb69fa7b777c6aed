package dashboard

import (
	"testing"

	"civicsync-admin/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.IssueStatus{
		{models.Pending, models.InProgress},
		{models.InProgress, models.Resolved},
		{models.Pending, models.Error},
		{models.InProgress, models.Error},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]models.IssueStatus{
		{models.Pending, models.Resolved},
		{models.InProgress, models.Pending},
		{models.Resolved, models.InProgress},
		{models.Resolved, models.Error},
		{models.Error, models.Pending},
		{models.Error, models.Resolved},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestCheckTransitionRoutesResolutionElsewhere(t *testing.T) {
	issue := newIssue("1", models.Water, models.InProgress)
	assert.ErrorIs(t, CheckTransition(issue, models.Resolved), ErrInvalidTransition)
	assert.NoError(t, CheckTransition(issue, models.Error))
}

func TestCheckResolution(t *testing.T) {
	issue := newIssue("1", models.Water, models.InProgress)
	img := []byte{0xff, 0xd8, 0xff}

	assert.ErrorIs(t, CheckResolution(issue, models.Resolution{Image: img}), ErrResolutionIncomplete)
	assert.ErrorIs(t, CheckResolution(issue, models.Resolution{Notes: "   ", Image: img}), ErrResolutionIncomplete)
	assert.ErrorIs(t, CheckResolution(issue, models.Resolution{Notes: "replaced cable"}), ErrResolutionIncomplete)
	assert.NoError(t, CheckResolution(issue, models.Resolution{Notes: "replaced cable", Image: img}))

	pending := newIssue("2", models.Water, models.Pending)
	assert.ErrorIs(t, CheckResolution(pending, models.Resolution{Notes: "done", Image: img}), ErrInvalidTransition)
}

func TestCheckDelete(t *testing.T) {
	bad := newIssue("1", models.Water, models.Error)
	live := newIssue("2", models.Water, models.Pending)
	staff := models.User{Department: models.Water, Role: models.DepartmentHead}

	assert.NoError(t, CheckDelete(bad, admin))
	assert.ErrorIs(t, CheckDelete(bad, staff), ErrForbidden)
	assert.ErrorIs(t, CheckDelete(live, admin), ErrInvalidTransition)
}
