package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Report statuses.
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
)

// CreateReport stores a new report in pending status.
func (s *Store) CreateReport(ctx context.Context, r *Report) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	r.Status = ReportStatusPending
	r.CreatedAt, r.UpdatedAt = now, now

	res, err := s.reports.InsertOne(ctx, r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// ReportByID fetches one report.
func (s *Store) ReportByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	return findOne[Report](ctx, s.reports, bson.M{"_id": id})
}

// ListReports returns one page of reports, optionally filtered by status
// and content type, plus the total count.
func (s *Store) ListReports(ctx context.Context, status, contentType string, page, limit int) ([]Report, int64, error) {
	q := bson.M{}
	if status != "" {
		q["status"] = status
	}
	if contentType != "" {
		q["contentType"] = contentType
	}

	cur, err := s.reports.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	reports, err := decodeAll[Report](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.reports.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// UpdateReportStatus moves a report through its review lifecycle.
func (s *Store) UpdateReportStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.reports.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReport removes a report.
func (s *Store) DeleteReport(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.reports.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportCountsByStatus returns the number of reports per status.
func (s *Store) ReportCountsByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	type row struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	rows, err := decodeAll[row](ctx, cur)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
