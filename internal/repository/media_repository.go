package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/google/uuid"
)

// MediaRepository persists the media catalog.
type MediaRepository interface {
	Create(ctx context.Context, item *media.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (media.Item, error)
	List(ctx context.Context, mediaType string, page, limit int) ([]media.Item, int64, error)
	Count(ctx context.Context, mediaType string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresMediaRepository struct {
	db DBTX
}

func NewMediaRepository(db DBTX) MediaRepository {
	return &PostgresMediaRepository{db: db}
}

func (r *PostgresMediaRepository) Create(ctx context.Context, item *media.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedDate.IsZero() {
		item.CreatedDate = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_items (id, media_url, media_type, title, uploader_name, thumbnail_url, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.MediaURL, string(item.MediaType), item.Title, item.UploaderName, item.ThumbnailURL, item.CreatedDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return album_errors.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (r *PostgresMediaRepository) GetByID(ctx context.Context, id uuid.UUID) (media.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, media_url, media_type, title, uploader_name, thumbnail_url, created_date
		FROM media_items WHERE id = $1`, id)
	return scanItem(row)
}

func (r *PostgresMediaRepository) List(ctx context.Context, mediaType string, page, limit int) ([]media.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := r.Count(ctx, mediaType)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, media_url, media_type, title, uploader_name, thumbnail_url, created_date
		FROM media_items`
	args := []interface{}{}
	if mediaType != "" {
		query += ` WHERE media_type = $1 ORDER BY created_date DESC LIMIT $2 OFFSET $3`
		args = append(args, mediaType, limit, (page-1)*limit)
	} else {
		query += ` ORDER BY created_date DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, (page-1)*limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []media.Item
	for rows.Next() {
		item, err := scanItemRows(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresMediaRepository) Count(ctx context.Context, mediaType string) (int64, error) {
	var total int64
	var err error
	if mediaType != "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items WHERE media_type = $1`, mediaType).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&total)
	}
	return total, err
}

func (r *PostgresMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return album_errors.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row *sql.Row) (media.Item, error) {
	item, err := scanItemRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return media.Item{}, album_errors.ErrNotFound
	}
	return item, err
}

func scanItemRows(s rowScanner) (media.Item, error) {
	var item media.Item
	var mediaType string
	var title, thumbnail sql.NullString
	if err := s.Scan(&item.ID, &item.MediaURL, &mediaType, &title, &item.UploaderName, &thumbnail, &item.CreatedDate); err != nil {
		return media.Item{}, err
	}
	item.MediaType = media.MediaType(mediaType)
	item.Title = title.String
	item.ThumbnailURL = thumbnail.String
	return item, nil
}
