package mount

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// placeholder matches {{name}} with optional whitespace.
var placeholder = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// templateContext is what a response body template can refer to.
type templateContext struct {
	req *Request
	env *Env
	now func() time.Time
}

// expand replaces every placeholder in s. Unknown names expand to "".
func (c *templateContext) expand(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		m := placeholder.FindStringSubmatch(match)
		if len(m) < 2 {
			return match
		}
		return c.value(m[1])
	})
}

func (c *templateContext) value(name string) string {
	switch name {
	case "request.path":
		return c.req.Path
	case "request.method":
		return c.req.Method
	case "request.body":
		return string(c.req.Body)
	case "request.query":
		return c.req.RawQuery
	case "project.id":
		return c.env.ProjectID
	case "project.name":
		return c.env.Project.Name(c.env.ProjectID)
	case "namespace":
		return c.env.Namespace
	case "uuid":
		return uuid.NewString()
	case "now":
		return c.now().UTC().Format(time.RFC3339)
	}
	if key, ok := strings.CutPrefix(name, "request.query."); ok {
		return c.req.Query().Get(key)
	}
	if key, ok := strings.CutPrefix(name, "request.header."); ok {
		return c.req.Header.Get(key)
	}
	return ""
}
