package operations

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// ResourceReader renders a resource. Params holds the values captured by
// the URI template placeholders.
type ResourceReader func(ctx context.Context, params map[string]string) (string, error)

// Resource is a read-only view addressed by a URI template such as
// terminal://product/{id}.
type Resource struct {
	Name        string
	URITemplate string
	Description string
	Action      string
	Read        ResourceReader

	scheme   string
	segments []string
}

// ResourceInfo describes a resource to clients
type ResourceInfo struct {
	Name        string `json:"name"`
	URITemplate string `json:"uriTemplate"`
	Description string `json:"description"`
}

// RegisterResource parses the template and adds the resource
func (r *Registry) RegisterResource(res Resource) error {
	if res.Name == "" || res.Read == nil {
		return fmt.Errorf("resource name and reader are required")
	}
	scheme, segments, err := splitURI(res.URITemplate)
	if err != nil {
		return fmt.Errorf("resource %q: %w", res.Name, err)
	}
	for _, existing := range r.resources {
		if existing.URITemplate == res.URITemplate {
			return fmt.Errorf("resource template %q already registered", res.URITemplate)
		}
	}
	if res.Action == "" {
		res.Action = "reading " + res.Name
	}
	res.scheme = scheme
	res.segments = segments

	r.resources = append(r.resources, &res)
	return nil
}

// Resources lists registered resources sorted by template
func (r *Registry) Resources() []ResourceInfo {
	infos := make([]ResourceInfo, 0, len(r.resources))
	for _, res := range r.resources {
		infos = append(infos, ResourceInfo{
			Name:        res.Name,
			URITemplate: res.URITemplate,
			Description: res.Description,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].URITemplate < infos[j].URITemplate })
	return infos
}

// ReadResource resolves uri against the registered templates and renders
// the first match.
func (r *Registry) ReadResource(ctx context.Context, uri string) (res Result) {
	start := time.Now()

	resource, params := r.matchResource(uri)
	if resource == nil {
		res = failureResult(unknownResource, "reading "+uri, &errors.ErrNotFound{Resource: "resource", ID: uri})
		r.finish(ctx, unknownResource, domain.OperationResource, res, start)
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Resource reader panicked",
				zap.String("resource", resource.Name),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			res = failureResult(resource.Name, resource.Action, fmt.Errorf("internal error"))
		}
		for i := range res.Content {
			res.Content[i].URI = uri
		}
		r.finish(ctx, resource.Name, domain.OperationResource, res, start)
	}()

	text, err := resource.Read(ctx, params)
	if err != nil {
		return failureResult(resource.Name, resource.Action, err)
	}
	return textResult(resource.Name, text)
}

func (r *Registry) matchResource(uri string) (*Resource, map[string]string) {
	scheme, segments, err := splitURI(uri)
	if err != nil {
		return nil, nil
	}

	for _, res := range r.resources {
		if res.scheme != scheme || len(res.segments) != len(segments) {
			continue
		}
		params, ok := matchSegments(res.segments, segments)
		if ok {
			return res, params
		}
	}
	return nil, nil
}

func matchSegments(template, actual []string) (map[string]string, bool) {
	params := make(map[string]string)
	for i, seg := range template {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			value, err := url.PathUnescape(actual[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = value
			continue
		}
		if seg != actual[i] {
			return nil, false
		}
	}
	return params, true
}

// splitURI splits scheme://a/b into the scheme and its path segments
func splitURI(uri string) (string, []string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" || rest == "" {
		return "", nil, fmt.Errorf("invalid resource URI %q", uri)
	}
	return scheme, strings.Split(strings.Trim(rest, "/"), "/"), nil
}
