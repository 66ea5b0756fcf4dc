// Package sink persists team aggregates to a MongoDB Atlas collection.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rainball/etl/internal/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds Atlas connection settings
type Config struct {
	User       string
	Key        string
	Cluster    string
	Database   string
	Collection string
}

// URI builds the Atlas SRV connection string
func (c Config) URI() string {
	return fmt.Sprintf(
		"mongodb+srv://%s:%s@%s.mongodb.net/?retryWrites=true&w=majority",
		c.User, c.Key, c.Cluster,
	)
}

// WriteFailure describes one document that could not be inserted
type WriteFailure struct {
	Index   int
	Message string
}

// PartialFailure reports the outcome of an unordered bulk insert in which
// some documents failed. The batch is never aborted on the first failure.
type PartialFailure struct {
	Total    int
	Inserted int
	Failures []WriteFailure
}

func (p *PartialFailure) String() string {
	msgs := make([]string, 0, len(p.Failures))
	for _, f := range p.Failures {
		msgs = append(msgs, fmt.Sprintf("doc %d: %s", f.Index, f.Message))
	}
	return fmt.Sprintf("%d/%d documents failed: %s", len(p.Failures), p.Total, strings.Join(msgs, "; "))
}

// Mongo is the remote document sink
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongo connects to the Atlas cluster and verifies the connection
func NewMongo(ctx context.Context, cfg Config) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to atlas: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping atlas: %w", err)
	}

	log.Info().
		Str("cluster", cfg.Cluster).
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("Connected to Atlas")

	return &Mongo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// InsertTeamStats inserts all aggregates as a single unordered bulk write.
// Individual document failures do not abort the batch; they are collected
// into the returned PartialFailure (nil when everything was inserted).
// Generated document IDs are returned only when returnIDs is true.
func (m *Mongo) InsertTeamStats(ctx context.Context, stats []*models.TeamAggregate, returnIDs bool) ([]string, *PartialFailure, error) {
	if len(stats) == 0 {
		return nil, nil, nil
	}

	docs := make([]interface{}, len(stats))
	for i, s := range stats {
		docs[i] = s
	}

	res, err := m.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))

	partial, err := partialFromBulkError(err, len(docs))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert team stats: %w", err)
	}
	if partial != nil {
		log.Warn().
			Int("failed", len(partial.Failures)).
			Int("total", partial.Total).
			Msg("Bulk insert completed with failures")
	}

	var ids []string
	if returnIDs && res != nil {
		failed := make(map[int]bool)
		if partial != nil {
			for _, f := range partial.Failures {
				failed[f.Index] = true
			}
		}
		for i, id := range res.InsertedIDs {
			if failed[i] {
				continue
			}
			ids = append(ids, formatID(id))
		}
	}

	log.Info().
		Int("documents", len(docs)).
		Int("ids_returned", len(ids)).
		Msg("Team stats forwarded to Atlas")

	return ids, partial, nil
}

// partialFromBulkError turns an unordered bulk-write error into a
// PartialFailure report. Only per-document write errors are treated as
// partial; anything else is returned as a hard error.
func partialFromBulkError(err error, total int) (*PartialFailure, error) {
	if err == nil {
		return nil, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return nil, err
	}

	partial := &PartialFailure{Total: total}
	for _, we := range bwe.WriteErrors {
		partial.Failures = append(partial.Failures, WriteFailure{
			Index:   we.Index,
			Message: we.Message,
		})
	}
	partial.Inserted = total - len(partial.Failures)

	return partial, nil
}

func formatID(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

// Close disconnects from the cluster
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from atlas: %w", err)
	}
	return nil
}
