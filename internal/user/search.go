package user

import (
	"context"
	"fmt"
	"strings"
)

// SortKey identifies a column the directory can be ordered by.
type SortKey string

const (
	SortByID        SortKey = "id"
	SortByCreatedAt SortKey = "created_at"
	SortByFullName  SortKey = "full_name"
	SortByEmail     SortKey = "email"
	SortByCity      SortKey = "city"
	SortByZipCode   SortKey = "zip_code"
	SortByRoleTitle SortKey = "role_title"
)

// Ordering is an explicit sort key and direction pair.
type Ordering struct {
	Key  SortKey
	Desc bool
}

// orderColumn maps a sort key to its ORDER BY column. The role title
// sorts on the joined roles table; everything else is a users column.
func orderColumn(key SortKey) (string, error) {
	switch key {
	case SortByID:
		return "u.id", nil
	case SortByCreatedAt:
		return "u.created_at", nil
	case SortByFullName:
		return "u.full_name", nil
	case SortByEmail:
		return "u.email", nil
	case SortByCity:
		return "u.city", nil
	case SortByZipCode:
		return "u.zip_code", nil
	case SortByRoleTitle:
		return "r.title", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
}

// Filters narrows directory searches per field. Nil pointers mean
// "not supplied". String filters match case-insensitive substrings;
// IDs matches an explicit list; RoleTitle matches the joined role
// title by substring.
type Filters struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	City        *string
	Address     *string
	ZipCode     *string
	RoleTitle   *string
	IDs         []int64
}

// Query describes a directory search. Search matches a single term
// across id (as text), full name, email, phone, city, address, zip
// code, and role title. Only active users are ever returned.
type Query struct {
	Search   string
	Filters  Filters
	Ordering *Ordering
}

// Search returns active users matching the query, ordered as requested.
// Without an explicit ordering, newest accounts come first.
func (r *SQLiteRepository) Search(ctx context.Context, q Query) ([]User, error) {
	var (
		where = []string{"u.is_active = 1"}
		args  []any
	)

	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		where = append(where, `(
			CAST(u.id AS TEXT) LIKE ?
			OR LOWER(u.full_name) LIKE ?
			OR LOWER(u.email) LIKE ?
			OR LOWER(u.phone_number) LIKE ?
			OR LOWER(u.city) LIKE ?
			OR LOWER(u.address) LIKE ?
			OR LOWER(u.zip_code) LIKE ?
			OR LOWER(r.title) LIKE ?
		)`)
		for i := 0; i < 8; i++ {
			args = append(args, term)
		}
	}

	addSubstring := func(column string, value *string) {
		if value == nil {
			return
		}
		where = append(where, fmt.Sprintf("LOWER(%s) LIKE ?", column))
		args = append(args, "%"+strings.ToLower(*value)+"%")
	}

	addSubstring("u.full_name", q.Filters.FullName)
	addSubstring("u.email", q.Filters.Email)
	addSubstring("u.phone_number", q.Filters.PhoneNumber)
	addSubstring("u.city", q.Filters.City)
	addSubstring("u.address", q.Filters.Address)
	addSubstring("u.zip_code", q.Filters.ZipCode)
	addSubstring("r.title", q.Filters.RoleTitle)

	if len(q.Filters.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Filters.IDs)), ",")
		where = append(where, fmt.Sprintf("u.id IN (%s)", placeholders))
		for _, id := range q.Filters.IDs {
			args = append(args, id)
		}
	}

	orderBy := "u.created_at DESC"
	if q.Ordering != nil {
		column, err := orderColumn(q.Ordering.Key)
		if err != nil {
			return nil, err
		}
		direction := "ASC"
		if q.Ordering.Desc {
			direction = "DESC"
		}
		orderBy = column + " " + direction
	}

	query := userSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}
