package links

import (
	"fmt"
	"net/url"
	"strings"
)

// URLResolver turns a named route plus parameters into an absolute URI.
type URLResolver interface {
	Link(route string, params map[string]string) (string, error)
}

// Routes maps route names to gin style path templates ("/api/posts/:id").
// It is built at startup and read-only afterwards.
type Routes struct {
	paths map[string]string
}

func NewRoutes(paths map[string]string) Routes {
	r := Routes{paths: make(map[string]string, len(paths))}
	for name, p := range paths {
		r.paths[name] = p
	}
	return r
}

// Path returns the template of a named route.
func (r Routes) Path(name string) (string, bool) {
	p, ok := r.paths[name]
	return p, ok
}

// WithBase binds the routes to a scheme+host prefix such as
// "https://blog.example.com".
func (r Routes) WithBase(base string) URLs {
	return URLs{routes: r, base: strings.TrimRight(base, "/")}
}

// URLs resolves named routes against one base URL.
type URLs struct {
	routes Routes
	base   string
}

// Link fills ":name" path segments from params and appends the remaining
// non-empty params as a sorted query string.
func (u URLs) Link(route string, params map[string]string) (string, error) {
	tmpl, ok := u.routes.paths[route]
	if !ok {
		return "", fmt.Errorf("route %q is not registered", route)
	}

	used := map[string]bool{}
	segments := strings.Split(tmpl, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("route %q needs parameter %q", route, name)
		}
		segments[i] = url.PathEscape(v)
		used[name] = true
	}

	q := url.Values{}
	for k, v := range params {
		if used[k] || v == "" {
			continue
		}
		q.Set(k, v)
	}

	href := u.base + strings.Join(segments, "/")
	if enc := q.Encode(); enc != "" {
		href += "?" + enc
	}
	return href, nil
}
