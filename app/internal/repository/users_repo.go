package repository

import (
	"context"
	"time"

	"recruit/tracker/app/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userCols = `id,telegram_id,username,first_name,last_name,role,is_active,created_at,updated_at`

type UsersRepo struct{ db *sqlx.DB }

func NewUsersRepo(db *sqlx.DB) *UsersRepo { return &UsersRepo{db: db} }

// on picks the transaction when given, the pool otherwise.
func (r *UsersRepo) on(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *UsersRepo) Create(ctx context.Context, q sqlx.ExtContext, u *domain.User) error {
	q = r.on(q)
	err := sqlx.GetContext(ctx, q, &u.ID, q.Rebind(`
insert into users(telegram_id,username,first_name,last_name,role,is_active,created_at,updated_at)
values(?,?,?,?,?,?,?,?) returning id`),
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return translate(err, "user")
}

func (r *UsersRepo) Get(ctx context.Context, q sqlx.ExtContext, id int64) (domain.User, error) {
	q = r.on(q)
	var u domain.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind(`select `+userCols+` from users where id=?`), id)
	if err != nil {
		return domain.User{}, translate(err, "user")
	}
	return u, nil
}

func (r *UsersRepo) GetByTelegramID(ctx context.Context, q sqlx.ExtContext, telegramID int64) (domain.User, error) {
	q = r.on(q)
	var u domain.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind(`select `+userCols+` from users where telegram_id=?`), telegramID)
	if err != nil {
		return domain.User{}, translate(err, "user")
	}
	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, q sqlx.ExtContext, u domain.User, now time.Time) error {
	q = r.on(q)
	_, err := q.ExecContext(ctx, q.Rebind(`update users set username=?, first_name=?, last_name=?, updated_at=? where id=?`),
		u.Username, u.FirstName, u.LastName, now, u.ID)
	return translate(err, "user")
}

func (r *UsersRepo) SetRole(ctx context.Context, q sqlx.ExtContext, id int64, role domain.Role, now time.Time) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`update users set role=?, updated_at=? where id=?`), role, now, id))
	if err != nil {
		return translate(err, "user")
	}
	if !ok {
		return domain.NotFound("user", id)
	}
	return nil
}

// List returns active and inactive users, optionally of one role, oldest first.
func (r *UsersRepo) List(ctx context.Context, q sqlx.ExtContext, role *domain.Role) ([]domain.User, error) {
	q = r.on(q)
	query := `select ` + userCols + ` from users`
	var args []any
	if role != nil {
		query += ` where role=?`
		args = append(args, *role)
	}
	query += ` order by id`
	var out []domain.User
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, translate(err, "users")
	}
	return out, nil
}
