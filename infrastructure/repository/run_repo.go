package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dotmini-mcx/domain/history"
)

const runsCollection = "runs"

// runDocument is the MongoDB document structure for runs.
type runDocument struct {
	ID           string         `bson:"_id"`
	StartedAt    time.Time      `bson:"started_at"`
	FinishedAt   time.Time      `bson:"finished_at"`
	ModelPath    string         `bson:"model_path"`
	LabelsPath   string         `bson:"labels_path"`
	InputFolders []string       `bson:"input_folders"`
	OutputFolder string         `bson:"output_folder"`
	BatchSize    int            `bson:"batch_size"`
	Total        int            `bson:"total"`
	Processed    int            `bson:"processed"`
	Failed       int            `bson:"failed"`
	Status       string         `bson:"status"`
	ClassCounts  map[string]int `bson:"class_counts,omitempty"`
	Error        string         `bson:"error,omitempty"`
}

// MongoRunRepository implements history.Repository using MongoDB.
type MongoRunRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoRunRepository creates a MongoDB-based run repository.
func NewMongoRunRepository(db *MongoDB, logger *slog.Logger) *MongoRunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoRunRepository{
		collection: db.Collection(runsCollection),
		logger:     logger,
	}
}

// FindByID retrieves a run by ID.
func (r *MongoRunRepository) FindByID(ctx context.Context, id string) (*history.Run, error) {
	var doc runDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return documentToRun(&doc), nil
}

// FindRecent returns up to limit runs, newest first.
func (r *MongoRunRepository) FindRecent(ctx context.Context, limit int) ([]*history.Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find runs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []runDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode runs: %w", err)
	}

	runs := make([]*history.Run, len(docs))
	for i := range docs {
		runs[i] = documentToRun(&docs[i])
	}
	return runs, nil
}

// Insert stores a new run.
func (r *MongoRunRepository) Insert(ctx context.Context, run *history.Run) error {
	if _, err := r.collection.InsertOne(ctx, runToDocument(run)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	r.logger.Info("Run recorded", "id", run.ID, "status", run.Status, "processed", run.Processed)
	return nil
}

// Delete removes a run by ID.
func (r *MongoRunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.DeletedCount == 0 {
		return history.ErrRunNotFound
	}
	return nil
}

func documentToRun(doc *runDocument) *history.Run {
	return &history.Run{
		ID:           doc.ID,
		StartedAt:    doc.StartedAt,
		FinishedAt:   doc.FinishedAt,
		ModelPath:    doc.ModelPath,
		LabelsPath:   doc.LabelsPath,
		InputFolders: doc.InputFolders,
		OutputFolder: doc.OutputFolder,
		BatchSize:    doc.BatchSize,
		Total:        doc.Total,
		Processed:    doc.Processed,
		Failed:       doc.Failed,
		Status:       history.Status(doc.Status),
		ClassCounts:  doc.ClassCounts,
		Error:        doc.Error,
	}
}

func runToDocument(run *history.Run) *runDocument {
	return &runDocument{
		ID:           run.ID,
		StartedAt:    run.StartedAt.UTC(),
		FinishedAt:   run.FinishedAt.UTC(),
		ModelPath:    run.ModelPath,
		LabelsPath:   run.LabelsPath,
		InputFolders: run.InputFolders,
		OutputFolder: run.OutputFolder,
		BatchSize:    run.BatchSize,
		Total:        run.Total,
		Processed:    run.Processed,
		Failed:       run.Failed,
		Status:       string(run.Status),
		ClassCounts:  run.ClassCounts,
		Error:        run.Error,
	}
}

var _ history.Repository = (*MongoRunRepository)(nil)
