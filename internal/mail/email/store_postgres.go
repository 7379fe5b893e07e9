package email

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

func (repository *PostgresRepository) Create(context context.Context, email *Email) error {
	const query = `
		INSERT INTO mail.email (id, subject, body, senderid, sentat, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.db.Exec(context, query,
		email.ID, email.Subject, email.Body, email.SenderID, email.SentAt, email.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_email")
	}
	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Email, error) {
	const query = `
		SELECT e.id, e.subject, e.body, e.senderid, a.username, e.sentat, e.createdat
		FROM mail.email e
		JOIN users.account a ON e.senderid = a.id
		WHERE e.id = $1`

	email := &Email{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&email.ID, &email.Subject, &email.Body, &email.SenderID,
		&email.SenderName, &email.SentAt, &email.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_email_by_id")
	}
	return email, nil
}

func (repository *PostgresRepository) Update(context context.Context, email *Email) error {
	const query = `UPDATE mail.email SET subject = $2, body = $3 WHERE id = $1`

	_, err := repository.db.Exec(context, query, email.ID, email.Subject, email.Body)
	if err != nil {
		return dberr.Wrap(err, "update_email")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM mail.email WHERE id = $1`

	_, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_email")
	}
	return nil
}

func (repository *PostgresRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Email, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM mail.email e
		WHERE ($1 = '' OR e.subject ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR e.senderid::text = $2)`

	var total int
	if err := repository.db.QueryRow(context, countQuery, filter.Subject, filter.SenderID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_emails")
	}

	const listQuery = `
		SELECT e.id, e.subject, e.body, e.senderid, a.username, e.sentat, e.createdat
		FROM mail.email e
		JOIN users.account a ON e.senderid = a.id
		WHERE ($1 = '' OR e.subject ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR e.senderid::text = $2)
		ORDER BY e.createdat DESC
		LIMIT $3 OFFSET $4`

	rows, err := repository.db.Query(context, listQuery, filter.Subject, filter.SenderID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_emails")
	}
	defer rows.Close()

	emails := make([]*Email, 0)
	for rows.Next() {
		email := &Email{}
		if err := rows.Scan(
			&email.ID, &email.Subject, &email.Body, &email.SenderID,
			&email.SenderName, &email.SentAt, &email.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_email")
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_emails_rows")
	}

	return emails, total, nil
}
