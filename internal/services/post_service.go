package services

import (
	"context"
	"strconv"
	"time"

	"blogapi/internal/domain"
	"blogapi/internal/domain/models"
	"blogapi/internal/mapping"
	"blogapi/internal/query"
	"blogapi/internal/resources"
	"blogapi/internal/shaping"
	"blogapi/internal/utils"
)

// PostStore is the storage the post service reads and writes.
type PostStore interface {
	List(ctx context.Context, params query.PostParameters, order query.Directive) (query.Page[models.Post], error)
	GetByID(ctx context.Context, id int64) (models.Post, error)
	Create(ctx context.Context, p models.Post) (models.Post, error)
	Delete(ctx context.Context, id int64) error
}

// PostService runs the validate -> sort -> page -> shape pipeline for posts.
type PostService struct {
	Posts     PostStore
	Mappings  *mapping.Registry
	RequestID string
	Now       func() time.Time
}

func (s PostService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// ListPosts returns one page of shaped post records. orderBy and fields are
// checked before storage is touched.
func (s PostService) ListPosts(ctx context.Context, params query.PostParameters) (query.Page[*shaping.Record], error) {
	if err := shaping.CheckFields[resources.PostResource](params.Fields); err != nil {
		return query.Page[*shaping.Record]{}, err
	}
	kind := resources.PostKind()
	if err := s.Mappings.CheckOrderBy(kind, params.OrderBy); err != nil {
		return query.Page[*shaping.Record]{}, err
	}
	sel, err := shaping.Select[resources.PostResource](params.Fields)
	if err != nil {
		return query.Page[*shaping.Record]{}, err
	}

	table, err := s.Mappings.Resolve(kind)
	if err != nil {
		return query.Page[*shaping.Record]{}, err
	}
	order, err := query.CompileSort(params.OrderBy, table)
	if err != nil {
		return query.Page[*shaping.Record]{}, err
	}

	page, err := s.Posts.List(ctx, params, order)
	if err != nil {
		return query.Page[*shaping.Record]{}, err
	}
	utils.LogEvent(s.RequestID, "post", "list",
		"page="+strconv.Itoa(page.PageIndex)+" size="+strconv.Itoa(page.PageSize)+" total="+strconv.Itoa(page.TotalCount()))

	return query.Map(page, func(p models.Post) *shaping.Record {
		return sel.Apply(resources.FromPost(p))
	}), nil
}

// GetPost returns one shaped post.
func (s PostService) GetPost(ctx context.Context, id int64, fields string) (*shaping.Record, error) {
	if err := shaping.CheckFields[resources.PostResource](fields); err != nil {
		return nil, err
	}
	sel, err := shaping.Select[resources.PostResource](fields)
	if err != nil {
		return nil, err
	}
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sel.Apply(resources.FromPost(p)), nil
}

// NewPost is the payload of a create request.
type NewPost struct {
	Title  string `json:"title" binding:"required,max=200"`
	Body   string `json:"body"`
	Author string `json:"author" binding:"required,max=100"`
}

// CreatePost stores a post stamped with the current time and returns it as
// a full resource.
func (s PostService) CreatePost(ctx context.Context, in NewPost) (resources.PostResource, error) {
	title := utils.NormalizeSpace(in.Title)
	author := utils.NormalizeSpace(in.Author)
	if title == "" {
		return resources.PostResource{}, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "title", Msg: "must not be blank"}
	}
	if author == "" {
		return resources.PostResource{}, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "author", Msg: "must not be blank"}
	}

	p, err := s.Posts.Create(ctx, models.Post{
		Title:        title,
		Body:         in.Body,
		Author:       author,
		LastModified: s.now().UTC(),
	})
	if err != nil {
		return resources.PostResource{}, err
	}
	utils.LogEvent(s.RequestID, "post", "create", "id="+strconv.FormatInt(p.ID, 10))
	return resources.FromPost(p), nil
}

// DeletePost removes a post.
func (s PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.Posts.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "post", "delete", "id="+strconv.FormatInt(id, 10))
	return nil
}
