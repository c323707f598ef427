package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/repository"
	"github.com/secmon-lab/libris/pkg/repository/firestore"
	"github.com/secmon-lab/libris/pkg/repository/memory"
	"github.com/secmon-lab/libris/pkg/repository/notion"
	"github.com/secmon-lab/libris/pkg/repository/postgres"
	"github.com/secmon-lab/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for the storage backends. Resources and pairing
// state are stored independently, so each side picks its own backend.
type Repository struct {
	resourceBackend string
	pairingBackend  string

	postgresDSN string

	notionToken      string
	notionDatabaseID string

	firestoreProjectID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "resource-backend",
			Usage:       "Resource storage backend (postgres, notion or memory)",
			Category:    "Repository",
			Value:       "postgres",
			Sources:     cli.EnvVars("LIBRIS_RESOURCE_BACKEND"),
			Destination: &r.resourceBackend,
		},
		&cli.StringFlag{
			Name:        "pairing-backend",
			Usage:       "Pairing storage backend (firestore or memory)",
			Category:    "Repository",
			Value:       "memory",
			Sources:     cli.EnvVars("LIBRIS_PAIRING_BACKEND"),
			Destination: &r.pairingBackend,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL DSN (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LIBRIS_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "notion-api-token",
			Usage:       "Notion API token (required when using notion backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LIBRIS_NOTION_API_TOKEN"),
			Destination: &r.notionToken,
		},
		&cli.StringFlag{
			Name:        "notion-database-id",
			Usage:       "Notion database ID (required when using notion backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LIBRIS_NOTION_DATABASE_ID"),
			Destination: &r.notionDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID (required when using firestore pairing backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LIBRIS_FIRESTORE_PROJECT_ID"),
			Destination: &r.firestoreProjectID,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("resource_backend", r.resourceBackend),
		slog.String("pairing_backend", r.pairingBackend),
		slog.Int("postgres_dsn.len", len(r.postgresDSN)),
		slog.Int("notion_token.len", len(r.notionToken)),
		slog.String("notion_database_id", r.notionDatabaseID),
		slog.String("firestore_project_id", r.firestoreProjectID),
	)
}

// PostgresDSN returns the configured PostgreSQL DSN
func (r *Repository) PostgresDSN() string {
	return r.postgresDSN
}

// Configure initializes and returns a repository from the configured
// backends. embeddingDimension is the vector column width for the postgres
// backend. The caller is responsible for calling Close() on the returned
// repository.
func (r *Repository) Configure(ctx context.Context, embeddingDimension int) (interfaces.Repository, error) {
	var closers []func() error

	var resource interfaces.ResourceRepository
	switch r.resourceBackend {
	case "postgres":
		if r.postgresDSN == "" {
			return nil, goerr.New("postgres-dsn is required when using postgres backend")
		}
		client, err := postgres.New(ctx, r.postgresDSN, embeddingDimension)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		closers = append(closers, client.Close)
		resource = client
		logging.Default().Info("Using PostgreSQL resource backend", "dimension", embeddingDimension)

	case "notion":
		client, err := notion.New(r.notionToken, r.notionDatabaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize notion repository")
		}
		resource = client
		logging.Default().Info("Using Notion resource backend (keyword search only)",
			"database_id", r.notionDatabaseID)

	case "memory":
		resource = memory.New().Resource()
		logging.Default().Info("Using in-memory resource backend (development mode)")

	default:
		return nil, goerr.New("invalid resource backend", goerr.V("backend", r.resourceBackend))
	}

	var pairing interfaces.PairingRepository
	switch r.pairingBackend {
	case "firestore":
		if r.firestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore pairing backend")
		}
		client, err := firestore.New(ctx, r.firestoreProjectID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		closers = append(closers, client.Close)
		pairing = client
		logging.Default().Info("Using Firestore pairing backend", "project_id", r.firestoreProjectID)

	case "memory":
		pairing = memory.New().Pairing()
		logging.Default().Info("Using in-memory pairing backend (development mode)")

	default:
		return nil, goerr.New("invalid pairing backend", goerr.V("backend", r.pairingBackend))
	}

	return repository.NewComposite(resource, pairing, closers...), nil
}
