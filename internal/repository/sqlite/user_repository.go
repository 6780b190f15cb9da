package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0,
	activation_code TEXT NOT NULL DEFAULT '',
	avatar_key TEXT NOT NULL DEFAULT '',
	device_model TEXT NOT NULL DEFAULT '',
	os_version TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	device_time DATETIME NULL,
	latitude REAL NULL,
	longitude REAL NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, first_name, last_name, phone_number, email, password_hash, is_active, activation_code, avatar_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.ActivationCode,
		user.AvatarKey,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("user already exists: %w", err)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

const selectUserColumns = `
SELECT id, username, first_name, last_name, phone_number, email, password_hash, is_active, activation_code, avatar_key, device_model, os_version, ip_address, device_time, latitude, longitude, created_at, updated_at
FROM users`

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE username = ?`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) Activate(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET is_active=1, activation_code='', updated_at=? WHERE id=?`, "activate user", time.Now().UTC(), id)
}

func (r *UserRepository) UpdateDeviceInfo(ctx context.Context, id int64, info domain.DeviceInfo) error {
	return r.exec(ctx, `
UPDATE users
SET device_model=?, os_version=?, ip_address=?, device_time=?, latitude=?, longitude=?, updated_at=?
WHERE id=?`, "update device info",
		info.DeviceModel,
		info.OSVersion,
		info.IPAddress,
		info.DeviceTime.UTC(),
		info.Latitude,
		info.Longitude,
		time.Now().UTC(),
		id,
	)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, phoneNumber string) error {
	return r.exec(ctx, `
UPDATE users
SET first_name=?, last_name=?, email=?, phone_number=?, updated_at=?
WHERE id=?`, "update profile",
		firstName, lastName, email, phoneNumber, time.Now().UTC(), id,
	)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=?, updated_at=? WHERE id=?`, "update password", passwordHash, time.Now().UTC(), id)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatarKey string) error {
	return r.exec(ctx, `UPDATE users SET avatar_key=?, updated_at=? WHERE id=?`, "update avatar", avatarKey, time.Now().UTC(), id)
}

func (r *UserRepository) exec(ctx context.Context, query, action string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", action, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", action, repository.ErrNotFound)
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user       domain.User
		deviceTime sql.NullTime
		latitude   sql.NullFloat64
		longitude  sql.NullFloat64
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.ActivationCode,
		&user.AvatarKey,
		&user.DeviceModel,
		&user.OSVersion,
		&user.IPAddress,
		&deviceTime,
		&latitude,
		&longitude,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if deviceTime.Valid {
		t := deviceTime.Time.Local()
		user.DeviceTime = &t
	}
	if latitude.Valid {
		v := latitude.Float64
		user.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		user.Longitude = &v
	}
	return &user, nil
}
