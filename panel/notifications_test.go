package panel

import (
	"context"
	"testing"

	"civicsync-admin/models"
	"civicsync-admin/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadMarksSurviveRegeneration(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()

	feed, err := f.ctrl.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.DispatchAlert, feed[0].Kind)
	assert.Equal(t, models.CriticalAlert, feed[1].Kind)

	issue, ok, err := f.ctrl.OpenNotification(ctx, feed[1].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", issue.ID)
	assert.Equal(t, "p1", f.ctrl.State().SelectedIssue)

	_, err = f.st.Refresh(ctx)
	require.NoError(t, err)
	feed, err = f.ctrl.Notifications(ctx)
	require.NoError(t, err)
	assert.False(t, feed[0].Read)
	assert.True(t, feed[1].Read)

	feed, err = f.ctrl.MarkAllRead(ctx)
	require.NoError(t, err)
	for _, n := range feed {
		assert.True(t, n.Read)
	}
}

func TestOpenUnknownNotification(t *testing.T) {
	f := newFixture(t, admin)
	_, _, err := f.ctrl.OpenNotification(context.Background(), "critical:nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenNotificationRespectsVisibility(t *testing.T) {
	staff := models.User{Username: "ravi", Department: models.Water, Role: models.Staff}
	f := newFixture(t, staff)
	ctx := context.Background()

	feed, err := f.ctrl.Notifications(ctx)
	require.NoError(t, err)
	var critical models.Notification
	for _, n := range feed {
		if n.Kind == models.CriticalAlert {
			critical = n
		}
	}
	require.Equal(t, "p1", critical.IssueID)

	issue, ok, err := f.ctrl.OpenNotification(ctx, critical.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, issue.ID)
	assert.Empty(t, f.ctrl.State().SelectedIssue)

	feed, err = f.ctrl.Notifications(ctx)
	require.NoError(t, err)
	for _, n := range feed {
		if n.ID == critical.ID {
			assert.True(t, n.Read)
		}
	}
}
