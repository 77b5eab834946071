package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

var _ repository.DigestStore = (*DigestRepository)(nil)

// DigestRepository stores daily attendance digests.
type DigestRepository struct {
	coll *mongo.Collection
}

// NewDigestRepository creates a repository bound to db.daily_digests.
func NewDigestRepository(db *mongo.Database) *DigestRepository {
	return &DigestRepository{coll: db.Collection(digestsCollection)}
}

// SaveDailyDigest upserts the digest for its calendar day, so reruns replace
// the earlier figures. created_at keeps the first run's time.
func (r *DigestRepository) SaveDailyDigest(ctx context.Context, digest models.DailyDigest) error {
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"date": digest.Date}, digestUpdate(digest), opts); err != nil {
		return fmt.Errorf("failed to upsert daily digest: %w", err)
	}
	return nil
}

func digestUpdate(digest models.DailyDigest) bson.M {
	return bson.M{
		"$set": bson.M{
			"date":                  digest.Date,
			"total_employees":       digest.TotalEmployees,
			"present":               digest.Present,
			"absent":                digest.Absent,
			"unmarked":              digest.Unmarked,
			"attendance_percentage": digest.AttendancePercentage,
			"departments":           digest.Departments,
		},
		"$setOnInsert": bson.M{"created_at": digest.CreatedAt},
	}
}
