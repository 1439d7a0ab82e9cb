package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"blogapi/internal/http/middleware"
	"blogapi/internal/links"
	"blogapi/internal/mapping"
	"blogapi/internal/query"
	"blogapi/internal/services"
	"blogapi/internal/shaping"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// MediaTypeHateoas asks for the {value, links} envelope on collections.
const MediaTypeHateoas = "application/vnd.cgzl.hateoas+json"

// Route names resolved by the link builder.
const (
	RouteGetPosts   = "GetPosts"
	RouteGetPost    = "GetPost"
	RouteDeletePost = "DeletePost"
)

// PostHandler serves /api/posts.
type PostHandler struct {
	Posts           services.PostStore
	Mappings        *mapping.Registry
	Routes          links.Routes
	PublicBaseURL   string
	DefaultPageSize int
	MaxPageSize     int
}

// paginationMetadata is the X-Pagination header of plain collection responses.
type paginationMetadata struct {
	TotalItemsCount  int     `json:"totalItemsCount"`
	PageSize         int     `json:"pageSize"`
	PageIndex        int     `json:"pageIndex"`
	PageCount        int     `json:"pageCount"`
	PreviousPageLink *string `json:"previousPageLink"`
	NextPageLink     *string `json:"nextPageLink"`
}

// hateoasMetadata is the X-Pagination header when links travel in the body.
type hateoasMetadata struct {
	PageSize        int `json:"pageSize"`
	PageIndex       int `json:"pageIndex"`
	TotalItemsCount int `json:"totalItemsCount"`
	PageCount       int `json:"pageCount"`
}

type collectionEnvelope struct {
	Value []*shaping.Record `json:"value"`
	Links []links.Link      `json:"links"`
}

func (h *PostHandler) service(c *gin.Context) services.PostService {
	return services.PostService{
		Posts:     h.Posts,
		Mappings:  h.Mappings,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *PostHandler) linkBuilder(c *gin.Context) links.Builder {
	return links.Builder{
		URLs:            h.Routes.WithBase(h.baseURL(c)),
		CollectionRoute: RouteGetPosts,
		ItemRoute:       RouteGetPost,
		DeleteRoute:     RouteDeletePost,
		DeleteRel:       links.RelDelete,
	}
}

func (h *PostHandler) baseURL(c *gin.Context) string {
	if h.PublicBaseURL != "" {
		return h.PublicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// GET /api/posts
func (h *PostHandler) GetPosts(c *gin.Context) {
	var params query.PostParameters
	if !BindQueryOrError(c, &params) {
		return
	}
	if _, ok := c.GetQuery("orderBy"); !ok {
		params.OrderBy = query.DefaultOrderBy
	}
	params.Title = strings.TrimSpace(params.Title)
	params.Normalize(h.DefaultPageSize, h.MaxPageSize)

	page, err := h.service(c).ListPosts(c.Request.Context(), params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	builder := h.linkBuilder(c)

	if c.NegotiateFormat(binding.MIMEJSON, MediaTypeHateoas) == MediaTypeHateoas {
		h.respondHateoas(c, builder, params, page)
		return
	}

	meta := paginationMetadata{
		TotalItemsCount: page.TotalCount(),
		PageSize:        page.PageSize,
		PageIndex:       page.PageIndex,
		PageCount:       page.PageCount(),
	}
	if page.HasPrevious() {
		prev, err := builder.PageURI(params, links.PreviousPage)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		meta.PreviousPageLink = &prev
	}
	if page.HasNext() {
		next, err := builder.PageURI(params, links.NextPage)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		meta.NextPageLink = &next
	}
	if !setPaginationHeader(c, meta) {
		return
	}
	c.JSON(http.StatusOK, page.Items)
}

func (h *PostHandler) respondHateoas(c *gin.Context, builder links.Builder, params query.PostParameters, page query.Page[*shaping.Record]) {
	for _, rec := range page.Items {
		if err := attachLinks(builder, rec, params.Fields); err != nil {
			RespondDomainError(c, err)
			return
		}
	}
	collectionLinks, err := builder.ForCollection(params, page.HasPrevious(), page.HasNext())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	meta := hateoasMetadata{
		PageSize:        page.PageSize,
		PageIndex:       page.PageIndex,
		TotalItemsCount: page.TotalCount(),
		PageCount:       page.PageCount(),
	}
	if !setPaginationHeader(c, meta) {
		return
	}
	c.Header("Content-Type", MediaTypeHateoas+"; charset=utf-8")
	c.JSON(http.StatusOK, collectionEnvelope{Value: page.Items, Links: collectionLinks})
}

func setPaginationHeader(c *gin.Context, meta any) bool {
	raw, err := json.Marshal(meta)
	if err != nil {
		RespondDomainError(c, err)
		return false
	}
	c.Header(middleware.HeaderPagination, string(raw))
	return true
}

// attachLinks adds the self and delete links of a shaped record under "links".
func attachLinks(builder links.Builder, rec *shaping.Record, fields string) error {
	id, ok := recordID(rec)
	if !ok {
		return nil
	}
	resourceLinks, err := builder.ForResource(id, fields)
	if err != nil {
		return err
	}
	rec.Set("links", resourceLinks)
	return nil
}

func recordID(rec *shaping.Record) (int64, bool) {
	v, ok := rec.Lookup(shaping.IdentityField)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fields := strings.TrimSpace(c.Query("fields"))

	rec, err := h.service(c).GetPost(c.Request.Context(), id, fields)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := attachLinks(h.linkBuilder(c), rec, fields); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /api/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var in services.NewPost
	if !BindJSONOrError(c, &in) {
		return
	}

	created, err := h.service(c).CreatePost(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec, err := shaping.Shape(created, "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	builder := h.linkBuilder(c)
	resourceLinks, err := builder.ForResource(created.ID, "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec.Set("links", resourceLinks)

	c.Header("Location", resourceLinks[0].Href)
	c.JSON(http.StatusCreated, rec)
}

// DELETE /api/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service(c).DeletePost(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
