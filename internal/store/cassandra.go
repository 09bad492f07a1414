package store

import (
	"context"
	"fmt"
	"time"

	config "example.com/clyqfeed/internal/init"
	"example.com/clyqfeed/internal/models"
	"github.com/gocql/gocql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/cassandra"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// SessionInterface is the subset of *gocql.Session the archive uses.
type SessionInterface interface {
	Query(stmt string, values ...interface{}) *gocql.Query
	NewBatch(batchType gocql.BatchType) *gocql.Batch
	ExecuteBatch(batch *gocql.Batch) error
	Close()
}

// CassandraArchive implements Archive on a Cassandra keyspace.
type CassandraArchive struct {
	Session SessionInterface
	now     func() time.Time
}

// NewCassandraArchive connects to Cassandra, creating the keyspace and applying
// migrations first.
func NewCassandraArchive(cfg *config.Config) (*CassandraArchive, error) {
	if err := ensureKeyspace(cfg); err != nil {
		return nil, fmt.Errorf("failed to ensure keyspace: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cluster := newCluster(cfg)
	cluster.Keyspace = cfg.CassandraKeyspace
	cluster.Consistency = gocql.Quorum

	sess, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Cassandra session: %w", err)
	}

	logg.Info("store", "Connected to Cassandra keyspace")
	return &CassandraArchive{Session: sess, now: time.Now}, nil
}

func newCluster(cfg *config.Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.CassandraHost)
	cluster.Timeout = cfg.CassandraTimeout
	cluster.ConnectTimeout = cfg.CassandraTimeout

	if cfg.CassandraUsername != "" && cfg.CassandraPassword != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.CassandraUsername,
			Password: cfg.CassandraPassword,
		}
	}

	if cfg.CassandraDC != "" {
		cluster.HostFilter = gocql.DataCentreHostFilter(cfg.CassandraDC)
	}
	return cluster
}

// --- Ensure keyspace exists before migrations ---

func ensureKeyspace(cfg *config.Config) error {
	cluster := newCluster(cfg)
	cluster.Keyspace = "system"
	sess, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("failed to connect to Cassandra system keyspace: %w", err)
	}
	defer sess.Close()

	query := fmt.Sprintf(`
        CREATE KEYSPACE IF NOT EXISTS %s
        WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1};
    `, cfg.CassandraKeyspace)

	if err := sess.Query(query).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace: %w", err)
	}

	logg.Info("store", "Ensured Cassandra keyspace exists")
	return nil
}

// --- Migration runner ---

func migrationURLs(cfg *config.Config) (sourceURL, dbURL string) {
	sourceURL = fmt.Sprintf("file://%s", cfg.MigrationsPath)
	dbURL = fmt.Sprintf(
		"cassandra://%s/%s?x-migrations-table=schema_migrations&x-multi-statement=true",
		cfg.CassandraHost, cfg.CassandraKeyspace,
	)
	return sourceURL, dbURL
}

func runMigrations(cfg *config.Config) error {
	sourceURL, dbURL := migrationURLs(cfg)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if err == migrate.ErrNoChange {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// --- Archive operations ---

// ArchivePost records one post_created event in both archive tables.
// Re-delivered events overwrite the same rows.
func (a *CassandraArchive) ArchivePost(ctx context.Context, ev models.PostEvent) error {
	eventID, err := eventUUID(ev.EventID)
	if err != nil {
		return err
	}
	p := ev.Post

	batch := a.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO post_events (bucket, event_id, post_id, author, content, likes, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		archiveBucket, eventID, p.ID, p.Author, p.Content, p.Likes, p.Timestamp.Time, a.now().UTC())
	batch.Query(`INSERT INTO posts_by_author (author, event_id, post_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Author, eventID, p.ID, p.Content, p.Timestamp.Time)

	if err := a.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to archive post event", err)
		return fmt.Errorf("archive post %d: %w", p.ID, err)
	}

	logg.Info("store", fmt.Sprintf("Archived post %d", p.ID))
	return nil
}

// RecentArchived returns the newest archived events first.
func (a *CassandraArchive) RecentArchived(ctx context.Context, limit int) ([]models.ArchivedPost, error) {
	iter := a.Session.Query(`
		SELECT event_id, post_id, author, content, likes, created_at, archived_at
		FROM post_events WHERE bucket = ? LIMIT ?`,
		archiveBucket, limit,
	).WithContext(ctx).Iter()

	var res []models.ArchivedPost
	var row models.ArchivedPost
	var eventID gocql.UUID

	for iter.Scan(&eventID, &row.PostID, &row.Author, &row.Content, &row.Likes, &row.CreatedAt, &row.ArchivedAt) {
		row.EventID = eventID.String()
		res = append(res, row)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to read archived posts", err)
		return nil, err
	}
	return res, nil
}

// ArchivedByAuthor returns an author's archived posts, newest first.
func (a *CassandraArchive) ArchivedByAuthor(ctx context.Context, author string, limit int) ([]models.ArchivedPost, error) {
	iter := a.Session.Query(`
		SELECT event_id, post_id, content, created_at
		FROM posts_by_author WHERE author = ? LIMIT ?`,
		author, limit,
	).WithContext(ctx).Iter()

	var res []models.ArchivedPost
	var eventID gocql.UUID
	var postID int
	var content string
	var created time.Time

	for iter.Scan(&eventID, &postID, &content, &created) {
		res = append(res, models.ArchivedPost{
			EventID:   eventID.String(),
			PostID:    postID,
			Author:    author,
			Content:   content,
			CreatedAt: created,
		})
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to read archived posts by author", err)
		return nil, err
	}
	return res, nil
}

// Close gracefully closes Cassandra session.
func (a *CassandraArchive) Close() {
	if a.Session != nil {
		a.Session.Close()
		logg.Info("store", "Cassandra session closed")
	}
}

// all rows share one partition, clustered by event_id (timeuuid) descending
const archiveBucket = "posts"

// eventUUID parses the publisher's event id; a missing one gets a fresh TimeUUID.
func eventUUID(id string) (gocql.UUID, error) {
	if id == "" {
		return gocql.TimeUUID(), nil
	}
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}, fmt.Errorf("invalid event id %q: %w", id, err)
	}
	return u, nil
}
