// Package postgres provides PostgreSQL infrastructure components: the
// medication record store and the transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/medisure/go-coverage/internal/domain/medication"
)

// DefaultEventTopic is the topic catalog change events are relayed to.
const DefaultEventTopic = "medication.events"

// Store is a pgx-backed medication store. Each mutation writes a catalog
// event to the outbox table in the same transaction as the record change.
type Store struct {
	pool       *pgxpool.Pool
	eventTopic string
	logger     *zap.Logger
}

// NewStore creates a store over the given pool.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, eventTopic: DefaultEventTopic, logger: logger}
}

// Migrate creates the medications and outbox tables.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS medications (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			coverage_percentage DOUBLE PRECISION NOT NULL,
			deductible DOUBLE PRECISION NOT NULL,
			base_price DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS medications_code_key ON medications (LOWER(code));
		CREATE INDEX IF NOT EXISTS medications_name_idx ON medications (LOWER(name));

		CREATE TABLE IF NOT EXISTS outbox (
			id BIGSERIAL PRIMARY KEY,
			aggregate_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			kafka_topic TEXT NOT NULL,
			kafka_key TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			processed_at TIMESTAMPTZ,
			retry_count INT NOT NULL DEFAULT 0,
			last_error TEXT
		);
		CREATE INDEX IF NOT EXISTS outbox_unprocessed_idx ON outbox (created_at) WHERE processed_at IS NULL;
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const recordColumns = "code, name, coverage_percentage, deductible, base_price, created_at, updated_at"

// Put inserts a new record and its MedicationCreated outbox entry.
func (s *Store) Put(ctx context.Context, rec medication.Record) (medication.Record, error) {
	var stored medication.Record
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO medications (code, name, coverage_percentage, deductible, base_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+recordColumns,
			rec.Code, rec.Name, rec.CoveragePercentage, rec.Deductible, rec.BasePrice,
		)
		if err := scanRecord(row, &stored); err != nil {
			if isUniqueViolation(err) {
				return medication.NewError(medication.CodeConflict,
					"medication with this code already exists", err)
			}
			return fmt.Errorf("insert medication: %w", err)
		}
		return s.writeEvent(ctx, tx, medication.EventMedicationCreated, stored)
	})
	if err != nil {
		return medication.Record{}, err
	}
	return stored, nil
}

// Update replaces the mutable fields of an existing record.
func (s *Store) Update(ctx context.Context, rec medication.Record) (medication.Record, error) {
	var stored medication.Record
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE medications
			SET name = $2, coverage_percentage = $3, deductible = $4, base_price = $5, updated_at = NOW()
			WHERE LOWER(code) = LOWER($1)
			RETURNING `+recordColumns,
			rec.Code, rec.Name, rec.CoveragePercentage, rec.Deductible, rec.BasePrice,
		)
		if err := scanRecord(row, &stored); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound(err)
			}
			return fmt.Errorf("update medication: %w", err)
		}
		return s.writeEvent(ctx, tx, medication.EventMedicationUpdated, stored)
	})
	if err != nil {
		return medication.Record{}, err
	}
	return stored, nil
}

// Delete removes a record by code.
func (s *Store) Delete(ctx context.Context, code string) (medication.Record, error) {
	var deleted medication.Record
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			DELETE FROM medications
			WHERE LOWER(code) = LOWER($1)
			RETURNING `+recordColumns,
			code,
		)
		if err := scanRecord(row, &deleted); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound(err)
			}
			return fmt.Errorf("delete medication: %w", err)
		}
		return s.writeEvent(ctx, tx, medication.EventMedicationDeleted, deleted)
	})
	if err != nil {
		return medication.Record{}, err
	}
	return deleted, nil
}

// GetByCode retrieves a record case-insensitively.
func (s *Store) GetByCode(ctx context.Context, code string) (medication.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM medications
		WHERE LOWER(code) = LOWER($1)
	`, code)

	var rec medication.Record
	if err := scanRecord(row, &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return medication.Record{}, notFound(err)
		}
		return medication.Record{}, fmt.Errorf("get medication: %w", err)
	}
	return rec, nil
}

// FindByName returns case-insensitive exact matches in insertion order.
func (s *Store) FindByName(ctx context.Context, name string) ([]medication.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM medications
		WHERE LOWER(name) = LOWER($1)
		ORDER BY id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("find medications: %w", err)
	}
	defer rows.Close()

	var matches []medication.Record
	for rows.Next() {
		var rec medication.Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}
	return matches, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) writeEvent(ctx context.Context, tx pgx.Tx, eventType medication.EventType, rec medication.Record) error {
	event, err := medication.NewEvent(eventType, rec)
	if err != nil {
		return fmt.Errorf("build event: %w", err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return WriteEntry(ctx, tx, &OutboxEntry{
		AggregateID: rec.Code,
		EventType:   string(eventType),
		Payload:     payload,
		KafkaTopic:  s.eventTopic,
		KafkaKey:    rec.Code,
	})
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable, rec *medication.Record) error {
	return row.Scan(
		&rec.Code, &rec.Name, &rec.CoveragePercentage,
		&rec.Deductible, &rec.BasePrice, &rec.CreatedAt, &rec.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) *medication.Error {
	return medication.NewError(medication.CodeNotFound, "medication not found", err)
}
