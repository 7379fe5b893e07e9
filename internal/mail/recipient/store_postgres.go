package recipient

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

func (repository *PostgresRepository) Create(context context.Context, recipient *Recipient) error {
	const query = `
		INSERT INTO mail.recipient (id, name, emailid, recipienttypeid, userid, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.db.Exec(context, query,
		recipient.ID, recipient.Name, recipient.EmailID,
		recipient.RecipientTypeID, recipient.UserID, recipient.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_recipient")
	}
	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Recipient, error) {
	const query = `
		SELECT r.id, r.name, r.emailid, r.recipienttypeid, r.userid, r.createdat,
		       COALESCE(t.name, ''), a.username
		FROM mail.recipient r
		LEFT JOIN mail.recipient_type t ON r.recipienttypeid = t.id
		JOIN users.account a ON r.userid = a.id
		WHERE r.id = $1`

	recipient := &Recipient{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&recipient.ID, &recipient.Name, &recipient.EmailID, &recipient.RecipientTypeID,
		&recipient.UserID, &recipient.CreatedAt, &recipient.TypeName, &recipient.Username)
	if err != nil {
		return nil, dberr.Wrap(err, "get_recipient_by_id")
	}
	return recipient, nil
}

func (repository *PostgresRepository) Update(context context.Context, recipient *Recipient) error {
	const query = `
		UPDATE mail.recipient
		SET name = $2, recipienttypeid = $3
		WHERE id = $1`

	_, err := repository.db.Exec(context, query,
		recipient.ID, recipient.Name, recipient.RecipientTypeID)
	if err != nil {
		return dberr.Wrap(err, "update_recipient")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM mail.recipient WHERE id = $1`

	_, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_recipient")
	}
	return nil
}

func (repository *PostgresRepository) ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Recipient, int, error) {
	const countQuery = `SELECT COUNT(*) FROM mail.recipient WHERE emailid = $1`

	var total int
	if err := repository.db.QueryRow(context, countQuery, emailID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_recipients")
	}

	const listQuery = `
		SELECT r.id, r.name, r.emailid, r.recipienttypeid, r.userid, r.createdat,
		       COALESCE(t.name, ''), a.username
		FROM mail.recipient r
		LEFT JOIN mail.recipient_type t ON r.recipienttypeid = t.id
		JOIN users.account a ON r.userid = a.id
		WHERE r.emailid = $1
		ORDER BY r.createdat ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, listQuery, emailID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_recipients")
	}
	defer rows.Close()

	recipients := make([]*Recipient, 0)
	for rows.Next() {
		recipient := &Recipient{}
		if err := rows.Scan(
			&recipient.ID, &recipient.Name, &recipient.EmailID, &recipient.RecipientTypeID,
			&recipient.UserID, &recipient.CreatedAt, &recipient.TypeName, &recipient.Username); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_recipient")
		}
		recipients = append(recipients, recipient)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_recipients_rows")
	}

	return recipients, total, nil
}

// # Recipient Type Repository

type PostgresTypeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTypeRepository(db *pgxpool.Pool) *PostgresTypeRepository {
	return &PostgresTypeRepository{db: db}
}

func (repository *PostgresTypeRepository) Create(context context.Context, recipientType *RecipientType) error {
	const query = `INSERT INTO mail.recipient_type (id, name) VALUES ($1, $2)`

	_, err := repository.db.Exec(context, query, recipientType.ID, recipientType.Name)
	if err != nil {
		return dberr.Wrap(err, "create_recipient_type")
	}
	return nil
}

func (repository *PostgresTypeRepository) GetByID(context context.Context, id string) (*RecipientType, error) {
	const query = `SELECT id, name FROM mail.recipient_type WHERE id = $1`

	recipientType := &RecipientType{}
	err := repository.db.QueryRow(context, query, id).Scan(&recipientType.ID, &recipientType.Name)
	if err != nil {
		return nil, dberr.Wrap(err, "get_recipient_type")
	}
	return recipientType, nil
}

func (repository *PostgresTypeRepository) Update(context context.Context, recipientType *RecipientType) error {
	const query = `UPDATE mail.recipient_type SET name = $2 WHERE id = $1`

	_, err := repository.db.Exec(context, query, recipientType.ID, recipientType.Name)
	if err != nil {
		return dberr.Wrap(err, "update_recipient_type")
	}
	return nil
}

func (repository *PostgresTypeRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM mail.recipient_type WHERE id = $1`

	_, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_recipient_type")
	}
	return nil
}

func (repository *PostgresTypeRepository) List(context context.Context) ([]*RecipientType, error) {
	const query = `SELECT id, name FROM mail.recipient_type ORDER BY name ASC`

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_recipient_types")
	}
	defer rows.Close()

	types := make([]*RecipientType, 0)
	for rows.Next() {
		recipientType := &RecipientType{}
		if err := rows.Scan(&recipientType.ID, &recipientType.Name); err != nil {
			return nil, dberr.Wrap(err, "scan_recipient_type")
		}
		types = append(types, recipientType)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_recipient_types_rows")
	}

	return types, nil
}
