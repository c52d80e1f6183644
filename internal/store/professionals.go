package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const professionalColumns = "id, user_id, full_name, title, specializations, languages, bio, certification_details, status, verified_at, created_at, updated_at"

// CreateProfessionalAccount creates the user, its profile, the user and
// professional roles and the professional row in one transaction. The user
// id and timestamps of pro are filled in.
func (s *SQLiteStore) CreateProfessionalAccount(ctx context.Context, email, passwordHash string, pro *Professional) (*User, error) {
	specs, err := encodeList(pro.Specializations)
	if err != nil {
		return nil, err
	}
	langs, err := encodeList(pro.Languages)
	if err != nil {
		return nil, err
	}

	var user *User
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		fullName := pro.FullName
		user, err = createUserTx(ctx, tx, email, passwordHash, &fullName)
		if err != nil {
			return err
		}
		if err := grantRoleTx(ctx, tx, user.ID, RoleProfessional); err != nil {
			return err
		}

		pro.ID = uuid.NewString()
		pro.UserID = user.ID
		pro.CreatedAt = user.CreatedAt
		pro.UpdatedAt = user.CreatedAt
		_, err = tx.ExecContext(ctx, "INSERT INTO professionals ("+professionalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			pro.ID, pro.UserID, pro.FullName, pro.Title, specs, langs, pro.Bio, pro.CertificationDetails,
			pro.Status, pro.VerifiedAt, pro.CreatedAt, pro.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert professional: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) GetProfessionalByUserID(ctx context.Context, userID string) (*Professional, error) {
	return s.getProfessional(ctx, "user_id", userID)
}

func (s *SQLiteStore) GetProfessionalByID(ctx context.Context, id string) (*Professional, error) {
	return s.getProfessional(ctx, "id", id)
}

func (s *SQLiteStore) getProfessional(ctx context.Context, column, value string) (*Professional, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+professionalColumns+" FROM professionals WHERE "+column+" = ?", value)
	pro, err := scanProfessional(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query professional: %w", err)
	}
	return pro, nil
}

// ListProfessionals returns professionals with the given status, oldest first.
func (s *SQLiteStore) ListProfessionals(ctx context.Context, status string) ([]Professional, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+professionalColumns+" FROM professionals WHERE status = ? ORDER BY created_at ASC, rowid ASC", status)
	if err != nil {
		return nil, fmt.Errorf("failed to query professionals: %w", err)
	}
	defer rows.Close()

	pros := []Professional{}
	for rows.Next() {
		pro, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan professional row: %w", err)
		}
		pros = append(pros, *pro)
	}
	return pros, rows.Err()
}

// SetProfessionalStatus updates the review status. verifiedAt is stored as
// given, nil clears it.
func (s *SQLiteStore) SetProfessionalStatus(ctx context.Context, id, status string, verifiedAt *time.Time) (*Professional, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE professionals SET status = ?, verified_at = ?, updated_at = ? WHERE id = ?",
		status, verifiedAt, now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update professional status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetProfessionalByID(ctx, id)
}

func scanProfessional(r rowScanner) (*Professional, error) {
	var p Professional
	var specs, langs string
	var bio, cert sql.NullString
	var verifiedAt sql.NullTime
	if err := r.Scan(&p.ID, &p.UserID, &p.FullName, &p.Title, &specs, &langs, &bio, &cert,
		&p.Status, &verifiedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Specializations, err = decodeList(specs); err != nil {
		return nil, err
	}
	if p.Languages, err = decodeList(langs); err != nil {
		return nil, err
	}
	p.Bio = nullString(bio)
	p.CertificationDetails = nullString(cert)
	p.VerifiedAt = nullTime(verifiedAt)
	return &p, nil
}
