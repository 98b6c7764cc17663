package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/example/internlog/internal/persistence"
)

// Field names follow the documents written by the web front end so
// existing collections can be served without conversion.

type segmentDocument struct {
	StartTime string `bson:"startTime"`
	EndTime   string `bson:"endTime"`
}

type taskDocument struct {
	ID           any               `bson:"_id"`
	Date         time.Time         `bson:"date"`
	StartTime    string            `bson:"startTime,omitempty"`
	EndTime      string            `bson:"endTime,omitempty"`
	TimeSegments []segmentDocument `bson:"timeSegments"`
	Description  string            `bson:"description"`
	Type         string            `bson:"type"`
	Duration     string            `bson:"duration"`
	Month        int               `bson:"month"`
	Year         int               `bson:"year"`
	CreatedAt    time.Time         `bson:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt"`
}

type profileDocument struct {
	ID           any       `bson:"_id"`
	StudentName  string    `bson:"studentName"`
	CompanyName  string    `bson:"companyName"`
	Designation  string    `bson:"designation"`
	ProjectTitle *string   `bson:"projectTitle,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newTaskDocument(task persistence.Task) taskDocument {
	segments := make([]segmentDocument, 0, len(task.Segments))
	for _, segment := range task.Segments {
		segments = append(segments, segmentDocument{StartTime: segment.Start, EndTime: segment.End})
	}
	return taskDocument{
		ID:           task.ID,
		Date:         task.Date.UTC(),
		StartTime:    task.LegacyStart,
		EndTime:      task.LegacyEnd,
		TimeSegments: segments,
		Description:  task.Description,
		Type:         task.Type,
		Duration:     task.Duration,
		Month:        task.Month,
		Year:         task.Year,
		CreatedAt:    task.CreatedAt.UTC(),
		UpdatedAt:    task.UpdatedAt.UTC(),
	}
}

func (d taskDocument) record() persistence.Task {
	var segments []persistence.Segment
	for _, segment := range d.TimeSegments {
		segments = append(segments, persistence.Segment{Start: segment.StartTime, End: segment.EndTime})
	}
	y, m, day := d.Date.UTC().Date()
	return persistence.Task{
		ID:          idString(d.ID),
		Date:        time.Date(y, m, day, 0, 0, 0, 0, time.UTC),
		Segments:    segments,
		LegacyStart: d.StartTime,
		LegacyEnd:   d.EndTime,
		Description: d.Description,
		Type:        d.Type,
		Duration:    d.Duration,
		Month:       d.Month,
		Year:        d.Year,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (d profileDocument) record() persistence.Profile {
	return persistence.CloneProfile(persistence.Profile{
		ID:           idString(d.ID),
		StudentName:  d.StudentName,
		CompanyName:  d.CompanyName,
		Designation:  d.Designation,
		ProjectTitle: d.ProjectTitle,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	})
}

// idString renders both ObjectID keys written by older clients and string
// keys written by this service.
func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	}
	return fmt.Sprint(id)
}

// idFilter matches a document whose _id is either the string id or the
// ObjectID with the same hex form.
func idFilter(id string) bson.M {
	candidates := bson.A{id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	return bson.M{"_id": bson.M{"$in": candidates}}
}
