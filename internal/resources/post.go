// Package resources holds the client-facing shapes of stored entities and
// their field mappings.
package resources

import (
	"time"

	"blogapi/internal/domain/models"
	"blogapi/internal/mapping"
)

// PostResource is the public representation of a post.
type PostResource struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	UpdateTime time.Time `json:"updateTime"`
}

// FromPost translates a stored post into its resource.
func FromPost(p models.Post) PostResource {
	return PostResource{
		ID:         p.ID,
		Title:      p.Title,
		Body:       p.Body,
		Author:     p.Author,
		UpdateTime: p.LastModified,
	}
}

// PostMapping maps PostResource fields onto Post fields. id is added by the
// mapping table itself.
func PostMapping() mapping.PropertyMapping {
	return mapping.For[PostResource, models.Post](
		mapping.Field("title", "Title"),
		mapping.Field("body", "Body"),
		mapping.Field("author", "Author"),
		mapping.Field("updateTime", "LastModified"),
	)
}

// PostKind is the mapping kind of posts.
func PostKind() mapping.Kind {
	return mapping.KindOf[PostResource, models.Post]()
}
