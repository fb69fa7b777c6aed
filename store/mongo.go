package store

import (
	"context"
	"fmt"
	"path"
	"time"

	"civicsync-admin/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageUploader stores a resolution photo and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// MongoSource reads and writes an issues collection stored in the panel's
// own Issue schema: string _id, department and submittedAt fields.
type MongoSource struct {
	collection *mongo.Collection
	images     ImageUploader
	timeout    time.Duration
}

func NewMongoSource(collection *mongo.Collection, images ImageUploader) *MongoSource {
	return &MongoSource{collection: collection, images: images, timeout: 10 * time.Second}
}

func (m *MongoSource) ListIssues(ctx context.Context) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (m *MongoSource) findOne(ctx context.Context, id string) (models.Issue, error) {
	var issue models.Issue
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return issue, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return issue, err
}

func (m *MongoSource) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	update := bson.M{}
	if patch.Title != nil {
		update["title"] = *patch.Title
	}
	if patch.Description != nil {
		update["description"] = *patch.Description
	}
	if patch.Department != nil {
		update["department"] = *patch.Department
	}
	if patch.Status != nil {
		update["status"] = *patch.Status
	}
	if patch.Priority != nil {
		update["priority"] = *patch.Priority
	}
	if patch.Notes != nil {
		update["notes"] = *patch.Notes
	}
	if len(update) == 0 {
		return m.findOne(ctx, id)
	}

	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return models.Issue{}, fmt.Errorf("update issue %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.Issue{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.findOne(ctx, id)
}

func (m *MongoSource) DeleteIssue(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ResolveIssue uploads the proof photo, then sets all resolution fields in one
// update that only matches while the issue is still in progress.
func (m *MongoSource) ResolveIssue(ctx context.Context, id string, res models.Resolution) (models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	key := path.Join("resolutions", id, uuid.NewString()+path.Ext(res.ImageName))
	url, err := m.images.Upload(ctx, key, res.ContentType, res.Image)
	if err != nil {
		return models.Issue{}, fmt.Errorf("upload resolution image: %w", err)
	}

	filter := bson.M{"_id": id, "status": models.InProgress}
	update := bson.M{"$set": bson.M{
		"status":           models.Resolved,
		"resolvedAt":       time.Now(),
		"resolvedImageUrl": url,
		"resolutionNotes":  res.Notes,
		"resolvedBy":       res.ResolvedBy,
	}}
	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.Issue{}, fmt.Errorf("resolve issue %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return models.Issue{}, fmt.Errorf("%w: %s is not in progress", ErrNotFound, id)
	}
	return m.findOne(ctx, id)
}
