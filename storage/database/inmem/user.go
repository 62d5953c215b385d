package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"sekolahku/core"
	"sekolahku/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

// query returns all users sorted by creation time. Callers hold the lock.
func (r *userRepository) query() []user.User {
	res := make([]user.User, 0, len(r.db.t))
	for _, usr := range r.db.t {
		res = append(res, *usr)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res
}

func (r *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}
	for _, usr := range r.query() {
		if _, skip := excluded[usr.ID]; skip {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	r.db.t[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return r.query(), nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if usr, ok := r.db.t[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, usr := range r.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, usr := range r.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, usr := range r.query() {
		if (usr.Username == username) || (usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var res []user.User
	search := strings.ToLower(filter.Search)
	for _, usr := range r.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(usr.Name), search) &&
			!strings.Contains(strings.ToLower(usr.Username), search) &&
			!strings.Contains(strings.ToLower(usr.Email), search) {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && (usr.IsActive == nil || *usr.IsActive != *filter.IsActive) {
			continue
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		res = append(res, usr)
	}
	orderUsers(res, filter.Orderings)
	return res, nil
}

func orderUsers(users []user.User, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		sort.SliceStable(users, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "name":
				less = users[a].Name < users[b].Name
			case "username":
				less = users[a].Username < users[b].Username
			case "email":
				less = users[a].Email < users[b].Email
			case "role":
				less = users[a].Role < users[b].Role
			case "last_login":
				less = users[a].LastLogin.Before(users[b].LastLogin)
			default:
				less = users[a].CreatedAt.Before(users[b].CreatedAt)
			}
			if !ord.Ascending {
				return !less
			}
			return less
		})
	}
}

func (r *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.t[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Name == "" {
		usr.Name = orig.Name
	}
	if usr.Username == "" {
		usr.Username = orig.Username
	}
	if usr.Email == "" {
		usr.Email = orig.Email
	}
	if len(usr.PasswordHash) == 0 {
		usr.PasswordHash = orig.PasswordHash
	}
	if isActive != nil {
		usr.IsActive = isActive
	} else if usr.IsActive == nil {
		usr.IsActive = orig.IsActive
	}
	usr.CreatedAt = orig.CreatedAt
	usr.LastLogin = orig.LastLogin
	r.db.t[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return r.CreateUser(ctx, usr)
	}
	return r.UpdateUser(ctx, usr, nil)
}

func (r *userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if usr, ok := r.db.t[id]; ok {
		usr.LastLogin = at
		return nil
	}
	return user.ErrNotFound
}

func (r *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, id := range ids {
		delete(r.db.t, id)
	}
	return nil
}
