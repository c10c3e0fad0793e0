package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hondenweiden/internal/domain/models"
	"hondenweiden/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type PastureRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPastureRepository(db *pgxpool.Pool) *PastureRepo {
	return &PastureRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PastureRepo) List(ctx context.Context) ([]models.PastureRecord, error) {
	const op = "repository.pasture_repository.List"

	query, args, err := r.sb.Select("id", "attrs").
		From("pastures").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	var records []models.PastureRecord
	for rows.Next() {
		var rec models.PastureRecord
		if err := rows.Scan(&rec.ID, &rec.Attrs); err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return records, nil
}

func (r *PastureRepo) Get(ctx context.Context, id uuid.UUID) (models.PastureRecord, error) {
	const op = "repository.pasture_repository.Get"

	query, args, err := r.sb.Select("id", "attrs").
		From("pastures").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.PastureRecord{}, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rec models.PastureRecord
	err = r.db.QueryRow(ctx, query, args...).Scan(&rec.ID, &rec.Attrs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PastureRecord{}, fmt.Errorf("%s: %w", op, storage.ErrPastureNotFound)
		}

		return models.PastureRecord{}, fmt.Errorf("%s: failed to get pasture: %w", op, err)
	}

	return rec, nil
}

// Create persists a new pasture document. A client-supplied id is never
// honored: identity keys are stripped and the store mints a fresh one.
func (r *PastureRepo) Create(ctx context.Context, attrs models.Attributes) (uuid.UUID, error) {
	const op = "repository.pasture_repository.Create"

	attrs = stripIdentity(attrs)
	now := time.Now().UTC()

	query, args, err := r.sb.Insert("pastures").
		Columns("id", "attrs", "created_at", "updated_at").
		Values(uuid.New(), attrs, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to create pasture: %w", op, err)
	}

	return id, nil
}

// Update merges the patch into the stored document (attrs || patch). Fields
// absent from the patch keep their stored value.
func (r *PastureRepo) Update(ctx context.Context, id uuid.UUID, patch models.Attributes) error {
	const op = "repository.pasture_repository.Update"

	patch = stripIdentity(patch)

	query, args, err := r.sb.Update("pastures").
		Set("attrs", sq.Expr("attrs || ?", patch)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update pasture: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPastureNotFound)
	}

	return nil
}

func (r *PastureRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.pasture_repository.Delete"

	query, args, err := r.sb.Delete("pastures").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete pasture: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPastureNotFound)
	}

	return nil
}

// stripIdentity drops identity keys from a submitted document so they can
// never overwrite the stored id ("_id" survives from imported legacy data).
func stripIdentity(attrs models.Attributes) models.Attributes {
	if attrs == nil {
		return models.Attributes{}
	}

	out := make(models.Attributes, len(attrs))
	for k, v := range attrs {
		if k == "id" || k == "_id" {
			continue
		}
		out[k] = v
	}

	return out
}
