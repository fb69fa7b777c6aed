package store

import (
	"context"
	"os"
	"testing"

	"civicsync-admin/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stubUploader struct{ keys []string }

func (u *stubUploader) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	u.keys = append(u.keys, key)
	return "https://cdn.example/" + key, nil
}

// Runs against a live server only when MONGODB_URI is set.
func TestMongoSourceRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("civicsync_admin_test").Collection("issues_" + uuid.NewString()[:8])
	defer coll.Drop(ctx)

	_, err = coll.InsertOne(ctx, issue("m1", models.InProgress, t0))
	require.NoError(t, err)

	images := &stubUploader{}
	src := NewMongoSource(coll, images)

	issues, err := src.ListIssues(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "m1", issues[0].ID)

	resolved, err := src.ResolveIssue(ctx, "m1", models.Resolution{Notes: "done", Image: []byte("x"), ImageName: "after.jpg", ResolvedBy: "meera"})
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, resolved.Status)
	require.Len(t, images.keys, 1)
	assert.Equal(t, "https://cdn.example/"+images.keys[0], *resolved.ResolvedImageURL)

	// Resolving twice must not match the in-progress filter.
	_, err = src.ResolveIssue(ctx, "m1", models.Resolution{Notes: "again", Image: []byte("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, src.DeleteIssue(ctx, "m1"))
	assert.ErrorIs(t, src.DeleteIssue(ctx, "m1"), ErrNotFound)
}
