package humastar

import (
	"fmt"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// EntryPoint is the API entry point every collection links back to.
const EntryPoint = "/health"

// linkMap stores the generated RFC 8288 link headers keyed by operation path.
var linkMap map[string][]string

// AutoLinks walks the OpenAPI spec and generates hypermedia links between
// collections, items and the entry point. Editor (SSE) operations are skipped.
// Call after all routes are registered.
func AutoLinks(api huma.API) {
	oapi := api.OpenAPI()
	linkMap = map[string][]string{}

	var collections, items []string
	for p, pi := range oapi.Paths {
		if hasTag(primaryTags(pi), "editor") {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, p)
		} else {
			collections = append(collections, p)
		}
	}

	// Item → parent collection.
	for _, item := range items {
		parent := path.Dir(item)
		if _, ok := oapi.Paths[parent]; ok {
			addLink(item, parent, "collection")
			addLink(item, parent, "up")
		}
	}

	for _, coll := range collections {
		// Collection → item template.
		for _, item := range items {
			if path.Dir(item) == coll {
				addLink(coll, item, "item")
			}
		}
		if pi := oapi.Paths[coll]; pi.Post != nil {
			addLink(coll, coll, "create-form")
		}
		if coll == EntryPoint {
			continue
		}
		addLink(coll, EntryPoint, "up")
		addLink(EntryPoint, coll, lastSegment(coll))
	}

	addLink(EntryPoint, "/openapi.json", "describedby")
	addLink(EntryPoint, "/openapi.json", "service-desc")
	addLink(EntryPoint, "/docs", "service-doc")
}

// LinkTransformer returns a Huma Transformer that injects the generated Link
// headers, a self link for item paths, pagination links and action links.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range linkMap[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}

		return v, nil
	}
}

// RootLinks returns the entry point links for non-Huma handlers.
func RootLinks() []string {
	return linkMap[EntryPoint]
}

func addLink(from, to, rel string) {
	val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
	for _, existing := range linkMap[from] {
		if existing == val {
			return
		}
	}
	linkMap[from] = append(linkMap[from], val)
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete} {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}
