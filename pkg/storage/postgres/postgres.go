// Package postgres provides a storage.Store backed by PostgreSQL, for
// documents that have to survive process restarts. Property values are kept
// in their JSON wire form in a jsonb column, so anything a store accepts can
// be stored without schema changes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbomkit/model-store/pkg/storage"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "modelstore"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

// WithDatabaseName overrides the database name, so that tenants can keep
// their documents in separate databases on a shared server.
func (c Config) WithDatabaseName(dbname string) Config {
	if dbname != "" {
		c.dbname = dbname
	}

	return c
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return conn, err
}

const schema = `
	CREATE TABLE IF NOT EXISTS objects (
		document_uri TEXT NOT NULL,
		object_id    TEXT NOT NULL,
		object_type  TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (document_uri, object_id)
	);

	CREATE TABLE IF NOT EXISTS properties (
		document_uri TEXT NOT NULL,
		object_id    TEXT NOT NULL,
		property     TEXT NOT NULL,
		is_list      BOOLEAN NOT NULL,
		value        JSONB NOT NULL,
		PRIMARY KEY (document_uri, object_id, property),
		FOREIGN KEY (document_uri, object_id) REFERENCES objects (document_uri, object_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS id_counters (
		document_uri TEXT NOT NULL,
		prefix       TEXT NOT NULL,
		counter      BIGINT NOT NULL,
		PRIMARY KEY (document_uri, prefix)
	);`

// Initialize creates the database schema if it does not exist yet.
func Initialize(ctx context.Context, p *pgxpool.Pool) error {
	_, err := p.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	return nil
}

// querier is the part of pgxpool.Pool and pgx.Tx the store needs, so that
// every operation can run against either.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on top of an existing connection pool. The schema
// must have been initialized beforehand.
func NewStore(p *pgxpool.Pool) storage.Store {
	return &pgStore{pool: p}
}

func (s *pgStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}

	return s.pool
}

// WithTransaction runs fn with a transaction carried in the context, so that
// every store operation fn performs joins it. A transaction that is already
// in progress is reused.
func (s *pgStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func (s *pgStore) Exists(ctx context.Context, documentURI, id string) (bool, error) {
	sql := `SELECT COUNT(*) FROM objects WHERE document_uri=$1 AND object_id=$2;`

	var count int
	err := s.q(ctx).QueryRow(ctx, sql, documentURI, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query object: %w", err)
	}

	return count > 0, nil
}

func (s *pgStore) Create(ctx context.Context, documentURI, id, typeName string) error {
	sql := `INSERT INTO objects (document_uri, object_id, object_type) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING;`

	tag, err := s.q(ctx).Exec(ctx, sql, documentURI, id, typeName)
	if err != nil {
		return fmt.Errorf("failed to create object: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.NewAlreadyExistsError(fmt.Sprintf("%s already exists in document %s", id, documentURI))
	}

	// an externally minted id that looks like one of ours must push the
	// matching counter forward, or a later GetNextID would collide with it
	if prefix, taken, ok := storage.ParseMintedID(id); ok {
		sql = `INSERT INTO id_counters (document_uri, prefix, counter) VALUES ($1, $2, $3)
			ON CONFLICT (document_uri, prefix) DO UPDATE
			SET counter = GREATEST(id_counters.counter, EXCLUDED.counter);`

		_, err = s.q(ctx).Exec(ctx, sql, documentURI, prefix, int64(taken))
		if err != nil {
			return fmt.Errorf("failed to advance id counter: %w", err)
		}
	}

	return nil
}

func (s *pgStore) GetValue(ctx context.Context, documentURI, id, propertyName string) (storage.Value, bool, error) {
	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return nil, false, err
	}

	sql := `SELECT value FROM properties WHERE document_uri=$1 AND object_id=$2 AND property=$3;`

	var raw []byte
	err := s.q(ctx).QueryRow(ctx, sql, documentURI, id, propertyName).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query property: %w", err)
	}

	value, err := storage.UnmarshalValue(raw)
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (s *pgStore) SetValue(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	// the guard keeps a scalar write from silently replacing a list slot
	sql := `INSERT INTO properties (document_uri, object_id, property, is_list, value)
		VALUES ($1, $2, $3, false, $4)
		ON CONFLICT (document_uri, object_id, property) DO UPDATE SET value = EXCLUDED.value
		WHERE properties.is_list = false;`

	tag, err := s.q(ctx).Exec(ctx, sql, documentURI, id, propertyName, encoded)
	if err != nil {
		return fmt.Errorf("failed to store property: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a list", propertyName, id))
	}

	return nil
}

func (s *pgStore) RemoveProperty(ctx context.Context, documentURI, id, propertyName string) error {
	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return err
	}

	sql := `DELETE FROM properties WHERE document_uri=$1 AND object_id=$2 AND property=$3;`

	_, err := s.q(ctx).Exec(ctx, sql, documentURI, id, propertyName)
	if err != nil {
		return fmt.Errorf("failed to remove property: %w", err)
	}

	return nil
}

func (s *pgStore) GetValueList(ctx context.Context, documentURI, id, propertyName string) ([]storage.Value, error) {
	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return nil, err
	}

	sql := `SELECT is_list, value FROM properties WHERE document_uri=$1 AND object_id=$2 AND property=$3;`

	var isList bool
	var raw []byte

	err := s.q(ctx).QueryRow(ctx, sql, documentURI, id, propertyName).Scan(&isList, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []storage.Value{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}

	if !isList {
		return nil, storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	return decodeList(raw)
}

func (s *pgStore) ClearValueList(ctx context.Context, documentURI, id, propertyName string) error {
	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return err
	}

	return s.writeList(ctx, documentURI, id, propertyName, []storage.Value{})
}

func (s *pgStore) AddValueToList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	return s.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireObject(ctx, documentURI, id); err != nil {
			return err
		}

		values, err := s.lockList(ctx, documentURI, id, propertyName)
		if err != nil {
			return err
		}

		return s.writeList(ctx, documentURI, id, propertyName, append(values, value))
	})
}

func (s *pgStore) RemoveValueFromList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	return s.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireObject(ctx, documentURI, id); err != nil {
			return err
		}

		values, err := s.lockList(ctx, documentURI, id, propertyName)
		if err != nil {
			return err
		}

		for i, v := range values {
			if storage.ValueEqual(v, value) {
				return s.writeList(ctx, documentURI, id, propertyName, append(values[:i], values[i+1:]...))
			}
		}

		return nil
	})
}

func (s *pgStore) ReplaceValueList(ctx context.Context, documentURI, id, propertyName string, values []storage.Value) error {
	for _, value := range values {
		if err := storage.ValidateStorable(value); err != nil {
			return err
		}
	}

	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return err
	}

	// a single row swap, so concurrent readers see either the old list or
	// the new one
	return s.writeList(ctx, documentURI, id, propertyName, values)
}

func (s *pgStore) GetNextID(ctx context.Context, idType storage.IDType, documentURI string) (string, error) {
	prefix, err := storage.MintPrefix(idType)
	if err != nil {
		return "", err
	}

	sql := `INSERT INTO id_counters (document_uri, prefix, counter) VALUES ($1, $2, 1)
		ON CONFLICT (document_uri, prefix) DO UPDATE SET counter = id_counters.counter + 1
		RETURNING counter;`

	var counter int64
	err = s.q(ctx).QueryRow(ctx, sql, documentURI, prefix).Scan(&counter)
	if err != nil {
		return "", fmt.Errorf("failed to advance id counter: %w", err)
	}

	return storage.FormatMintedID(prefix, uint64(counter)), nil
}

func (s *pgStore) CopyFrom(ctx context.Context, documentURI, id, typeName string, source storage.Store) error {
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		return storage.CopyObject(ctx, s, documentURI, id, typeName, source)
	})
}

func (s *pgStore) GetPropertyValueNames(ctx context.Context, documentURI, id string) ([]string, error) {
	return s.propertyNames(ctx, documentURI, id, false)
}

func (s *pgStore) GetPropertyValueListNames(ctx context.Context, documentURI, id string) ([]string, error) {
	return s.propertyNames(ctx, documentURI, id, true)
}

func (s *pgStore) propertyNames(ctx context.Context, documentURI, id string, lists bool) ([]string, error) {
	if err := s.requireObject(ctx, documentURI, id); err != nil {
		return nil, err
	}

	sql := `SELECT property FROM properties WHERE document_uri=$1 AND object_id=$2 AND is_list=$3 ORDER BY property;`

	rows, err := s.q(ctx).Query(ctx, sql, documentURI, id, lists)
	if err != nil {
		return nil, fmt.Errorf("failed to query property names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

func (s *pgStore) requireObject(ctx context.Context, documentURI, id string) error {
	found, err := s.Exists(ctx, documentURI, id)
	if err != nil {
		return err
	}

	if !found {
		return storage.NewNotFoundError(fmt.Sprintf("%s does not exist in document %s", id, documentURI))
	}

	return nil
}

// lockList reads a list slot for update. Absent slots read as empty, scalar
// slots are rejected.
func (s *pgStore) lockList(ctx context.Context, documentURI, id, propertyName string) ([]storage.Value, error) {
	sql := `SELECT is_list, value FROM properties WHERE document_uri=$1 AND object_id=$2 AND property=$3 FOR UPDATE;`

	var isList bool
	var raw []byte

	err := s.q(ctx).QueryRow(ctx, sql, documentURI, id, propertyName).Scan(&isList, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []storage.Value{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}

	if !isList {
		return nil, storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	return decodeList(raw)
}

func (s *pgStore) writeList(ctx context.Context, documentURI, id, propertyName string, values []storage.Value) error {
	encoded, err := json.Marshal(storage.List(values))
	if err != nil {
		return fmt.Errorf("failed to marshal value list: %w", err)
	}

	// the guard keeps a list write from silently replacing a scalar slot
	sql := `INSERT INTO properties (document_uri, object_id, property, is_list, value)
		VALUES ($1, $2, $3, true, $4)
		ON CONFLICT (document_uri, object_id, property) DO UPDATE SET value = EXCLUDED.value
		WHERE properties.is_list = true;`

	tag, err := s.q(ctx).Exec(ctx, sql, documentURI, id, propertyName, encoded)
	if err != nil {
		return fmt.Errorf("failed to store property: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	return nil
}

func decodeList(raw []byte) ([]storage.Value, error) {
	value, err := storage.UnmarshalValue(raw)
	if err != nil {
		return nil, err
	}

	list, ok := value.(storage.List)
	if !ok {
		return nil, storage.NewInternalError("a list slot holds something that is not a list")
	}

	return []storage.Value(list), nil
}
