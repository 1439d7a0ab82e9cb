package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/domain"
	"blogapi/internal/domain/models"
	"blogapi/internal/mapping"
	"blogapi/internal/query"
)

const postSelect = `SELECT id, title, body, author, last_modified FROM posts`

// postColumns maps Post storage fields to their columns.
var postColumns = map[string]string{
	"ID":           "id",
	"Title":        "title",
	"Body":         "body",
	"Author":       "author",
	"LastModified": "last_modified",
}

// PostRepository reads and writes the posts table. The SQL it issues runs
// unchanged on MySQL and SQLite.
type PostRepository struct {
	DB *sql.DB
}

// List returns one page of posts matching params, ordered by order. Ties fall
// back to id order. The total count is taken before paging.
func (r PostRepository) List(ctx context.Context, params query.PostParameters, order query.Directive) (query.Page[models.Post], error) {
	where, args := postFilter(params)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return query.Page[models.Post]{}, fmt.Errorf("count posts: %w", err)
	}

	orderSQL, err := order.ThenBy(mapping.IdentityTarget).SQL(postColumns)
	if err != nil {
		return query.Page[models.Post]{}, err
	}
	stmt := postSelect + where
	if orderSQL != "" {
		stmt += ` ORDER BY ` + orderSQL
	}
	stmt += ` LIMIT ? OFFSET ?`
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return query.Page[models.Post]{}, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	list := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return query.Page[models.Post]{}, fmt.Errorf("scan post: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return query.Page[models.Post]{}, fmt.Errorf("iterate posts: %w", err)
	}

	return query.NewPage(list, params.PageIndex, params.PageSize, total), nil
}

func postFilter(params query.PostParameters) (string, []any) {
	if params.Title == "" {
		return "", nil
	}
	return ` WHERE LOWER(title) = ?`, []any{strings.ToLower(params.Title)}
}

// GetByID loads one post; a missing row is a NotFoundError.
func (r PostRepository) GetByID(ctx context.Context, id int64) (models.Post, error) {
	row := r.DB.QueryRowContext(ctx, postSelect+` WHERE id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, domain.NotFoundError{Resource: "post", Err: err}
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// Create inserts p and returns it with its new id.
func (r PostRepository) Create(ctx context.Context, p models.Post) (models.Post, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO posts (title, body, author, last_modified) VALUES (?, ?, ?, ?)`,
		p.Title, p.Body, p.Author, p.LastModified)
	if err != nil {
		return p, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return p, fmt.Errorf("insert post id: %w", err)
	}
	p.ID = id
	return p, nil
}

// Delete removes a post; deleting a missing row is a NotFoundError.
func (r PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post %d rows: %w", id, err)
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "post"}
	}
	return nil
}

// Count returns the number of stored posts.
func (r PostRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (models.Post, error) {
	var (
		p    models.Post
		body sql.NullString
		mod  sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Title, &body, &p.Author, &mod); err != nil {
		return models.Post{}, err
	}
	p.Body = body.String
	if mod.Valid {
		p.LastModified = mod.Time
	}
	return p, nil
}
