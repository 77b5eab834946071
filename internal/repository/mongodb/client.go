package mongodb

import (
	"context"
	"crypto/tls"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/config"
)

const (
	employeesCollection  = "employees"
	attendanceCollection = "attendance"
	digestsCollection    = "daily_digests"

	indexEmployeeID     = "employee_id_unique"
	indexEmployeeEmail  = "email_unique"
	indexAttendanceDay  = "employee_id_date_unique"
	indexAttendanceDate = "date_idx"
	indexDigestDate     = "digest_date_unique"
)

// Client owns the MongoDB connection and hands out the configured database.
type Client struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// Connect dials MongoDB with bounded timeouts and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetRetryWrites(true)

	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	if cfg.TLS {
		clientOptions.SetTLSConfig(&tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSAllowInvalidCerts, //nolint:gosec // opt-in via MONGODB_TLS_ALLOW_INVALID_CERTS
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ServerSelectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", cfg.DBName), zap.Bool("tls", cfg.TLS))

	return &Client{client: client, dbName: cfg.DBName, logger: logger}, nil
}

// Database returns the handle of the configured logical database.
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.dbName)
}

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func indexSpecs() []indexSpec {
	return []indexSpec{
		{
			collection: employeesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "employee_id", Value: 1}},
				Options: options.Index().SetName(indexEmployeeID).SetUnique(true),
			},
		},
		{
			collection: employeesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName(indexEmployeeEmail).SetUnique(true),
			},
		},
		{
			collection: attendanceCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName(indexAttendanceDay).SetUnique(true),
			},
		},
		{
			collection: attendanceCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "date", Value: 1}},
				Options: options.Index().SetName(indexAttendanceDate),
			},
		},
		{
			collection: digestsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "date", Value: 1}},
				Options: options.Index().SetName(indexDigestDate).SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates the lookup and uniqueness indexes. Failures are
// logged and skipped: the services keep their own existence checks.
func (c *Client) EnsureIndexes(ctx context.Context) {
	db := c.Database()
	created := 0

	for _, spec := range indexSpecs() {
		name := ""
		if spec.model.Options != nil && spec.model.Options.Name != nil {
			name = *spec.model.Options.Name
		}

		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			c.logger.Warn("index creation failed",
				zap.String("collection", spec.collection),
				zap.String("index", name),
				zap.Error(err))
			continue
		}
		created++
	}

	c.logger.Info("database indexes ensured", zap.Int("ok", created), zap.Int("total", len(indexSpecs())))
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
