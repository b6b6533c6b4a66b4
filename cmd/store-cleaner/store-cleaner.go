package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbomkit/model-store/pkg/storage/postgres"
)

const appName string = "store-cleaner"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	log.Debug("begin cleaning expired documents")

	retention := env.GetVariableOrDefault(ctx, "MODEL_STORE_RETENTION_DAYS", "30")
	days, err := strconv.Atoi(retention)
	if err != nil || days < 1 {
		log.Error("invalid retention period", "days", retention)
		os.Exit(1)
	}

	p, err := postgres.Connect(ctx, postgres.LoadConfiguration(ctx))
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		os.Exit(1)
	}
	defer p.Close()

	cutoff := time.Now().AddDate(0, 0, -days)

	documents, err := getExpiredDocuments(ctx, p, cutoff)
	if err != nil {
		log.Error("failed to get expired documents", "err", err.Error())
		os.Exit(1)
	}

	log.Debug("number of expired documents", "count", len(documents))

	var totalCount int64 = 0

	for _, document := range documents {
		l := log.With(slog.String("document", document))

		count, err := deleteDocument(ctx, p, document)
		if err != nil {
			l.Error("failed to delete document", "err", err.Error())
			os.Exit(1)
		}

		totalCount += count

		l.Debug("deleted document", slog.Int64("objects", count))
	}

	log.Debug("vacuum")

	err = vacuum(ctx, p)
	if err != nil {
		log.Error("failed to vacuum tables", "err", err.Error())
		os.Exit(1)
	}

	log.Info("done cleaning", slog.Int("documents", len(documents)), slog.Int64("objects", totalCount))
}

// getExpiredDocuments returns the documents whose most recent object was
// created before the cutoff. A document that is still being appended to is
// never expired, no matter how old its oldest parts are.
func getExpiredDocuments(ctx context.Context, p *pgxpool.Pool, cutoff time.Time) ([]string, error) {
	sql := `
		SELECT document_uri FROM objects
		GROUP BY document_uri
		HAVING max(created_at) < $1
		ORDER BY document_uri;`

	rows, err := p.Query(ctx, sql, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	documents := make([]string, 0)

	for rows.Next() {
		var d string
		err := rows.Scan(&d)
		if err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}

// deleteDocument removes every object in a document together with its id
// counters. Properties go with their objects through the schema's cascade.
func deleteDocument(ctx context.Context, p *pgxpool.Pool, documentURI string) (int64, error) {
	tx, err := p.Begin(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM objects WHERE document_uri=$1;`, documentURI)
	if err != nil {
		tx.Rollback(ctx)
		return 0, err
	}

	_, err = tx.Exec(ctx, `DELETE FROM id_counters WHERE document_uri=$1;`, documentURI)
	if err != nil {
		tx.Rollback(ctx)
		return 0, err
	}

	return tag.RowsAffected(), tx.Commit(ctx)
}

func vacuum(ctx context.Context, p *pgxpool.Pool) error {
	_, err := p.Exec(ctx, "VACUUM ANALYZE objects, properties;")
	if err != nil {
		return err
	}

	return nil
}
