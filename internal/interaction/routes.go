package interaction

import "strings"

// Routes maps node ids to navigation routes.
// It is passed to the Controller so tests can substitute the table.
type Routes struct {
	Prefix string            `yaml:"prefix" json:"prefix"`
	Slugs  map[string]string `yaml:"slugs" json:"slugs"`
}

// DefaultRoutes returns the module pages of the system map
func DefaultRoutes() Routes {
	return Routes{
		Prefix: "/modules/",
		Slugs: map[string]string{
			"MEMORY_CORE":     "mt",
			"NEURAL_HUB":      "sentry",
			"RESEARCH_ENGINE": "ore",
			"VISUAL_CORTEX":   "marey",
			"PLUGIN_SYS":      "capsule",
			"SWARM":           "swarm",
		},
	}
}

// Resolve returns the route for id. Unmapped ids do not navigate.
func (r Routes) Resolve(id string) (string, bool) {
	slug, ok := r.Slugs[id]
	if !ok || slug == "" {
		return "", false
	}
	if strings.HasPrefix(slug, "/") {
		return slug, true
	}
	return r.Prefix + slug, true
}
