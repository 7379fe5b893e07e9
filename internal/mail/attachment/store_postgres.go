package attachment

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maildeck/maildeck/internal/platform/dberr"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(context context.Context, attachment *Attachment) error {
	const query = `
		INSERT INTO mail.attachment (id, filename, filetype, filesize, emailid, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.db.Exec(context, query,
		attachment.ID, attachment.Filename, attachment.FileType,
		attachment.FileSize, attachment.EmailID, attachment.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_attachment")
	}
	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Attachment, error) {
	const query = `
		SELECT id, filename, filetype, filesize, emailid, createdat
		FROM mail.attachment
		WHERE id = $1`

	attachment := &Attachment{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&attachment.ID, &attachment.Filename, &attachment.FileType,
		&attachment.FileSize, &attachment.EmailID, &attachment.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_attachment_by_id")
	}
	return attachment, nil
}

func (repository *PostgresRepository) Update(context context.Context, attachment *Attachment) error {
	const query = `
		UPDATE mail.attachment
		SET filename = $2, filetype = $3
		WHERE id = $1`

	_, err := repository.db.Exec(context, query,
		attachment.ID, attachment.Filename, attachment.FileType)
	if err != nil {
		return dberr.Wrap(err, "update_attachment")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM mail.attachment WHERE id = $1`

	_, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_attachment")
	}
	return nil
}

func (repository *PostgresRepository) ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Attachment, int, error) {
	const countQuery = `SELECT COUNT(*) FROM mail.attachment WHERE emailid = $1`

	var total int
	if err := repository.db.QueryRow(context, countQuery, emailID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_attachments")
	}

	const listQuery = `
		SELECT id, filename, filetype, filesize, emailid, createdat
		FROM mail.attachment
		WHERE emailid = $1
		ORDER BY createdat ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, listQuery, emailID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_attachments")
	}
	defer rows.Close()

	attachments := make([]*Attachment, 0)
	for rows.Next() {
		attachment := &Attachment{}
		if err := rows.Scan(
			&attachment.ID, &attachment.Filename, &attachment.FileType,
			&attachment.FileSize, &attachment.EmailID, &attachment.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_attachment")
		}
		attachments = append(attachments, attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_attachments_rows")
	}

	return attachments, total, nil
}
