package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/user"
)

type userRow struct {
	ID              string      `db:"id"`
	Name            null.String `db:"name"`
	Username        null.String `db:"username"`
	Email           null.String `db:"email"`
	Role            string      `db:"role"`
	LinkedStudentID null.String `db:"linked_student_id"`
	IsActive        null.Bool   `db:"is_active"`
	PasswordHash    null.Bytes  `db:"password_hash"`
	CreatedAt       null.Time   `db:"created_at"`
	UpdatedAt       null.Time   `db:"updated_at"`
	LastLogin       null.Time   `db:"last_login"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:              usr.ID,
		Name:            null.NewString(usr.Name, usr.Name != ""),
		Username:        null.NewString(usr.Username, usr.Username != ""),
		Email:           null.NewString(usr.Email, usr.Email != ""),
		Role:            usr.Role,
		LinkedStudentID: usr.LinkedStudentID,
		IsActive:        null.BoolFromPtr(usr.IsActive),
		PasswordHash:    null.BytesFrom(usr.PasswordHash),
		CreatedAt:       null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:       null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:       null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (row userRow) user() user.User {
	return user.User{
		ID:              row.ID,
		Name:            row.Name.String,
		Username:        row.Username.String,
		Email:           row.Email.String,
		Role:            row.Role,
		LinkedStudentID: row.LinkedStudentID,
		IsActive:        row.IsActive.Ptr(),
		PasswordHash:    row.PasswordHash.Bytes,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
		LastLogin:       row.LastLogin.Time,
	}
}

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DBExecutor) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT id, username, email, role FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		inQuery, inArgs, err := sqlx.In(`id NOT IN (?)`, ids)
		if err != nil {
			return core.NewStoreError("user.uniqueness", err)
		}
		query += " AND " + inQuery
		args = append(args, inArgs...)
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("user.uniqueness", err)
	}
	for _, row := range rows {
		if username != "" && row.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := newUserRow(usr)
	query := `
INSERT INTO "user" (id, name, username, email, role, linked_student_id, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :role, :linked_student_id, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, row); err != nil {
		return user.User{}, core.NewStoreError("user.create", err)
	}
	return row.user(), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := `SELECT * FROM "user" ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("user.query", err)
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo userRepository) getUserWhere(ctx context.Context, clause string, args ...interface{}) (user.User, error) {
	var row userRow
	query := repo.db.Rebind(`SELECT * FROM "user" WHERE ` + clause)
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, core.NewStoreError("user.get", err)
	}
	return row.user(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUserWhere(ctx, `id = ?`, id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUserWhere(ctx, `username = ?`, username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUserWhere(ctx, `email = ?`, email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUserWhere(ctx, `username = ? OR email = ?`, username, username)
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM "user" WHERE true`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		query += ` AND (name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`
		args = append(args, val, val, val)
	}
	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, filter.CreatedTo.UTC())
	}
	query += ` ORDER BY ` + userOrderBy(filter.Orderings)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, core.NewStoreError("user.filter", err)
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

// orderableUserColumns guards ORDER BY clauses against arbitrary input.
var orderableUserColumns = map[string]struct{}{
	"name":       {},
	"username":   {},
	"email":      {},
	"role":       {},
	"created_at": {},
	"last_login": {},
}

func userOrderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if _, ok := orderableUserColumns[ord.Field]; ok {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return "created_at"
	}
	return strings.Join(clauses, ", ")
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = isActive
	}
	row := newUserRow(usr)
	query := `
UPDATE "user"
SET name              = COALESCE(:name, name),
    username          = COALESCE(:username, username),
    email             = COALESCE(:email, email),
    role              = :role,
    linked_student_id = :linked_student_id,
    is_active         = COALESCE(:is_active, is_active),
    password_hash     = COALESCE(:password_hash, password_hash),
    updated_at        = :updated_at
WHERE id = :id`
	if !row.PasswordHash.Valid || len(row.PasswordHash.Bytes) == 0 {
		row.PasswordHash = null.Bytes{}
	}
	res, err := sqlx.NamedExecContext(ctx, repo.db, query, row)
	if err != nil {
		return user.User{}, core.NewStoreError("user.update", err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr, nil)
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	query := repo.db.Rebind(`UPDATE "user" SET last_login = ? WHERE id = ?`)
	if _, err := repo.db.ExecContext(ctx, query, at.UTC(), id); err != nil {
		return core.NewStoreError("user.last_login", err)
	}
	return nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return core.NewStoreError("user.delete", err)
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("user.delete", err)
	}
	return nil
}
