// Package mongo implements the persistence repositories on MongoDB, reading
// and writing the document shape used by the web front end.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/internlog/internal/persistence"
)

const (
	tasksCollection    = "tasks"
	profilesCollection = "profiles"
	connectTimeout     = 10 * time.Second
)

// Config describes the MongoDB connection.
type Config struct {
	URI      string
	Database string
}

// Store implements persistence.Store on a MongoDB database.
type Store struct {
	client   *mongo.Client
	tasks    *mongo.Collection
	profiles *mongo.Collection
	logger   *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// Open connects and pings the server. An empty URI or an unreachable server
// is reported as persistence.ErrUnavailable.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.URI == "" {
		return nil, fmt.Errorf("%w: mongo URI is not configured", persistence.ErrUnavailable)
	}
	if config.Database == "" {
		config.Database = "internlog"
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", persistence.ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %v", persistence.ErrUnavailable, err)
	}

	db := client.Database(config.Database)
	logger = logger.With("storage", "mongo", "database", config.Database)
	logger.InfoContext(ctx, "connected to mongo")

	return &Store{
		client:   client,
		tasks:    db.Collection(tasksCollection),
		profiles: db.Collection(profilesCollection),
		logger:   logger,
	}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks the server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Migrate ensures the indexes used by listings and profile lookup exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}, {Key: "date", Value: 1}}},
	}); err != nil {
		return mapError(fmt.Errorf("create task indexes: %w", err))
	}
	if _, err := s.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updatedAt", Value: -1}},
	}); err != nil {
		return mapError(fmt.Errorf("create profile indexes: %w", err))
	}
	s.logger.DebugContext(ctx, "mongo indexes ensured")
	return nil
}

// CreateTask inserts a task document.
func (s *Store) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, err := s.tasks.InsertOne(ctx, newTaskDocument(task)); err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateTask replaces the mutable fields of a task, keeping createdAt. A
// stored legacy pair is removed once segments are written.
func (s *Store) UpdateTask(ctx context.Context, task persistence.Task) error {
	doc := newTaskDocument(task)
	set := bson.M{
		"date":         doc.Date,
		"timeSegments": doc.TimeSegments,
		"description":  doc.Description,
		"type":         doc.Type,
		"duration":     doc.Duration,
		"month":        doc.Month,
		"year":         doc.Year,
		"updatedAt":    doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if task.LegacyStart == "" && task.LegacyEnd == "" {
		update["$unset"] = bson.M{"startTime": "", "endTime": ""}
	} else {
		set["startTime"] = task.LegacyStart
		set["endTime"] = task.LegacyEnd
	}

	result, err := s.tasks.UpdateOne(ctx, idFilter(task.ID), update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	var doc taskDocument
	if err := s.tasks.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		return persistence.Task{}, mapError(err)
	}
	return doc.record(), nil
}

// ListTasks returns tasks matching filter ordered by date, createdAt and id.
func (s *Store) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	query := bson.M{}
	if filter.Month != nil {
		query["month"] = *filter.Month
	}
	if filter.Year != nil {
		query["year"] = *filter.Year
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.tasks.Find(ctx, query, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	tasks := make([]persistence.Task, 0)
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode task: %w", err)
		}
		tasks = append(tasks, doc.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.tasks.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetProfile returns the most recently updated profile.
func (s *Store) GetProfile(ctx context.Context) (persistence.Profile, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	var doc profileDocument
	if err := s.profiles.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		return persistence.Profile{}, mapError(err)
	}
	return doc.record(), nil
}

// UpsertProfile updates the most recent profile or inserts profile when the
// collection is empty. A nil ProjectTitle keeps the stored title.
func (s *Store) UpsertProfile(ctx context.Context, profile persistence.Profile) (persistence.Profile, bool, error) {
	existing, err := s.GetProfile(ctx)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		if profile.ID == "" {
			return persistence.Profile{}, false, persistence.ErrConstraintViolation
		}
		doc := profileDocument{
			ID:           profile.ID,
			StudentName:  profile.StudentName,
			CompanyName:  profile.CompanyName,
			Designation:  profile.Designation,
			ProjectTitle: profile.ProjectTitle,
			CreatedAt:    profile.CreatedAt.UTC(),
			UpdatedAt:    profile.UpdatedAt.UTC(),
		}
		if _, err := s.profiles.InsertOne(ctx, doc); err != nil {
			return persistence.Profile{}, false, mapError(err)
		}
		return doc.record(), true, nil
	case err != nil:
		return persistence.Profile{}, false, err
	}

	set := bson.M{
		"studentName": profile.StudentName,
		"companyName": profile.CompanyName,
		"designation": profile.Designation,
		"updatedAt":   profile.UpdatedAt.UTC(),
	}
	if profile.ProjectTitle != nil {
		set["projectTitle"] = *profile.ProjectTitle
	}
	if _, err := s.profiles.UpdateOne(ctx, idFilter(existing.ID), bson.M{"$set": set}); err != nil {
		return persistence.Profile{}, false, mapError(err)
	}

	stored := persistence.CloneProfile(profile)
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	if stored.ProjectTitle == nil {
		stored.ProjectTitle = existing.ProjectTitle
	}
	return stored, false, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return persistence.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return err
}
