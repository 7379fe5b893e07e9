package folder

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maildeck/maildeck/internal/mail/email"
	"github.com/maildeck/maildeck/internal/platform/dberr"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(context context.Context, folder *Folder) error {
	const query = `
		INSERT INTO mail.folder (id, name, userid, createdat)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.db.Exec(context, query,
		folder.ID, folder.Name, folder.UserID, folder.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_folder")
	}
	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Folder, error) {
	const query = `
		SELECT f.id, f.name, f.userid, f.createdat,
		       (SELECT COUNT(*) FROM mail.email_folder ef WHERE ef.folderid = f.id)
		FROM mail.folder f
		WHERE f.id = $1`

	folder := &Folder{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&folder.ID, &folder.Name, &folder.UserID, &folder.CreatedAt, &folder.EmailCount)
	if err != nil {
		return nil, dberr.Wrap(err, "get_folder_by_id")
	}
	return folder, nil
}

func (repository *PostgresRepository) Update(context context.Context, folder *Folder) error {
	const query = `UPDATE mail.folder SET name = $2 WHERE id = $1`

	_, err := repository.db.Exec(context, query, folder.ID, folder.Name)
	if err != nil {
		return dberr.Wrap(err, "update_folder")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM mail.folder WHERE id = $1`

	_, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_folder")
	}
	return nil
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID, nameFilter string, params pagination.Params) ([]*Folder, int, error) {
	const countQuery = `
		SELECT COUNT(*) FROM mail.folder
		WHERE userid = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := repository.db.QueryRow(context, countQuery, userID, nameFilter).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_folders")
	}

	const listQuery = `
		SELECT f.id, f.name, f.userid, f.createdat,
		       (SELECT COUNT(*) FROM mail.email_folder ef WHERE ef.folderid = f.id)
		FROM mail.folder f
		WHERE f.userid = $1 AND ($2 = '' OR f.name ILIKE '%' || $2 || '%')
		ORDER BY f.name ASC
		LIMIT $3 OFFSET $4`

	rows, err := repository.db.Query(context, listQuery, userID, nameFilter, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_folders")
	}
	defer rows.Close()

	folders := make([]*Folder, 0)
	for rows.Next() {
		folder := &Folder{}
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.UserID, &folder.CreatedAt, &folder.EmailCount); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_folder")
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_folders_rows")
	}

	return folders, total, nil
}

func (repository *PostgresRepository) AttachEmail(context context.Context, folderID, emailID string) error {
	// ON CONFLICT keeps the attach idempotent.
	const query = `
		INSERT INTO mail.email_folder (emailid, folderid)
		VALUES ($1, $2)
		ON CONFLICT (emailid, folderid) DO NOTHING`

	_, err := repository.db.Exec(context, query, emailID, folderID)
	if err != nil {
		return dberr.Wrap(err, "attach_email")
	}
	return nil
}

func (repository *PostgresRepository) DetachEmail(context context.Context, folderID, emailID string) error {
	const query = `DELETE FROM mail.email_folder WHERE emailid = $1 AND folderid = $2`

	_, err := repository.db.Exec(context, query, emailID, folderID)
	if err != nil {
		return dberr.Wrap(err, "detach_email")
	}
	return nil
}

func (repository *PostgresRepository) ListEmails(context context.Context, folderID string, params pagination.Params) ([]*email.Email, int, error) {
	const countQuery = `SELECT COUNT(*) FROM mail.email_folder WHERE folderid = $1`

	var total int
	if err := repository.db.QueryRow(context, countQuery, folderID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_folder_emails")
	}

	const listQuery = `
		SELECT e.id, e.subject, e.body, e.senderid, a.username, e.sentat, e.createdat
		FROM mail.email_folder ef
		JOIN mail.email e ON ef.emailid = e.id
		JOIN users.account a ON e.senderid = a.id
		WHERE ef.folderid = $1
		ORDER BY e.createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, listQuery, folderID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_folder_emails")
	}
	defer rows.Close()

	emails := make([]*email.Email, 0)
	for rows.Next() {
		item := &email.Email{}
		if err := rows.Scan(
			&item.ID, &item.Subject, &item.Body, &item.SenderID,
			&item.SenderName, &item.SentAt, &item.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_folder_email")
		}
		emails = append(emails, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_folder_emails_rows")
	}

	return emails, total, nil
}
