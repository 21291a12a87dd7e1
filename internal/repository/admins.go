package repository

import (
	"context"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
)

func (r *Repository) GetAdminByID(id int64) (*domain.Admin, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_active, created_at, version
		FROM admins WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	admin := &domain.Admin{
		ID: id,
	}

	dst := []any{&admin.Username, &admin.PasswordHash, &admin.FullName, &admin.Email, &admin.Role, &admin.IsActive, &admin.CreatedAt, &admin.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *Repository) GetAdminByUsername(username string) (*domain.Admin, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, is_active, created_at, version
		FROM admins WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	admin := &domain.Admin{
		Username: username,
	}

	dst := []any{&admin.ID, &admin.PasswordHash, &admin.FullName, &admin.Email, &admin.Role, &admin.IsActive, &admin.CreatedAt, &admin.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *Repository) CreateAdmin(admin *domain.Admin) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO admins (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{admin.Username, admin.PasswordHash, admin.FullName, admin.Email, admin.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&admin.ID, &admin.IsActive, &admin.CreatedAt, &admin.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateAdmin(admin *domain.Admin) error {
	query := `
		UPDATE admins
		SET password_hash = $1, full_name = $2, email = $3, role = $4, is_active = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{admin.PasswordHash, admin.FullName, admin.Email, admin.Role, admin.IsActive, admin.ID, admin.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&admin.Version); err != nil {
		return err
	}

	return nil
}
