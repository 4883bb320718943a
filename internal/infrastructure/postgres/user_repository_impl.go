package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `
	id::text, username, email, password_hash, bio, gender, avatar_url,
	phone_number, role, account_type, followers::text[], following::text[],
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var gender, role, accountType string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &gender,
		&u.AvatarURL, &u.PhoneNumber, &role, &accountType, &u.Followers, &u.Following,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Gender = entity.Gender(gender)
	u.Role = entity.Role(role)
	u.AccountType = entity.AccountType(accountType)
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	defer rows.Close()
	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// mapWriteErr turns unique violations into repository sentinels.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return repository.ErrDuplicateUsername
		case "users_email_key":
			return repository.ErrDuplicateEmail
		}
	}
	return err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, bio, gender, avatar_url, phone_number, role, account_type)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Bio, string(u.Gender), u.AvatarURL,
		u.PhoneNumber, string(u.Role), string(u.AccountType))

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1
	`, login))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *UserRepository) ListSuggested(ctx context.Context, userID string, limit int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id <> $1::uuid
		  AND id <> ALL (COALESCE((SELECT following FROM users WHERE id = $1::uuid), '{}'::uuid[]))
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// Patch relies on COALESCE so that unset columns are read and written inside
// the same row update.
func (r *UserRepository) Patch(ctx context.Context, id string, p repository.UserPatch) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET username     = COALESCE($2, username),
		    email        = COALESCE($3, email),
		    bio          = COALESCE($4, bio),
		    gender       = COALESCE($5, gender),
		    avatar_url   = COALESCE($6, avatar_url),
		    phone_number = COALESCE($7, phone_number),
		    role         = COALESCE($8, role),
		    account_type = COALESCE($9, account_type),
		    updated_at   = now()
		WHERE id = $1::uuid
		RETURNING `+userColumns,
		id, p.Username, p.Email, p.Bio, text(p.Gender), p.AvatarURL,
		p.PhoneNumber, text(p.Role), text(p.AccountType)))
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return u, nil
}

// text passes enum pointers to pgx as plain nullable text.
func text[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ToggleFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	var present bool
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET following = CASE
		        WHEN $2::uuid = ANY (following) THEN array_remove(following, $2::uuid)
		        ELSE array_append(following, $2::uuid)
		    END,
		    updated_at = now()
		WHERE id = $1::uuid
		RETURNING $2::uuid = ANY (following)
	`, userID, targetID).Scan(&present)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	return present, err
}

func (r *UserRepository) SetFollowing(ctx context.Context, userID, targetID string, present bool) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET following = CASE
		        WHEN NOT $3::bool THEN array_remove(following, $2::uuid)
		        WHEN $2::uuid = ANY (following) THEN following
		        ELSE array_append(following, $2::uuid)
		    END,
		    updated_at = now()
		WHERE id = $1::uuid
	`, userID, targetID, present)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) MirrorFollower(ctx context.Context, userID, followerID string) (bool, error) {
	var present bool
	err := r.pool.QueryRow(ctx, `
		UPDATE users t
		SET followers = CASE
		        WHEN NOT EXISTS (SELECT 1 FROM users f WHERE f.id = $2::uuid AND t.id = ANY (f.following))
		            THEN array_remove(t.followers, $2::uuid)
		        WHEN $2::uuid = ANY (t.followers) THEN t.followers
		        ELSE array_append(t.followers, $2::uuid)
		    END,
		    updated_at = now()
		WHERE t.id = $1::uuid
		RETURNING $2::uuid = ANY (t.followers)
	`, userID, followerID).Scan(&present)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	return present, err
}

func (r *UserRepository) ListReferencing(ctx context.Context, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text FROM users
		WHERE followers @> ARRAY[$1::uuid] OR following @> ARRAY[$1::uuid]
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *UserRepository) RemoveReferences(ctx context.Context, userID, refID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET followers = array_remove(followers, $2::uuid),
		    following = array_remove(following, $2::uuid),
		    updated_at = now()
		WHERE id = $1::uuid
	`, userID, refID)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
