package backend

import "github.com/mphost/mph/pkg/render"

// Summary lists b's projects for navigation pages.
func Summary(b Backend) render.Backend {
	info := b.Info()
	projects := b.ListProjects()
	out := render.Backend{
		Identifier:  info.Identifier,
		Label:       info.Label,
		Description: info.Description,
		URLPrefix:   info.URLPrefix,
		Projects:    make([]render.Project, 0, len(projects)),
	}
	for _, p := range projects {
		out.Projects = append(out.Projects, ProjectLink(info, p))
	}
	return out
}

// ProjectLink converts a listed project into a navigation link.
func ProjectLink(info Info, p Project) render.Project {
	return render.Project{ID: p.ID, Name: p.Name, Emoji: p.Emoji, URL: info.URLPrefix + "/" + p.ID}
}
