package conversation

import (
	"fmt"
	"os"
	"strings"

	"github.com/amverse/amverse/pkg/rag"
	"gopkg.in/yaml.v3"
)

// Route binds a keyword to a backend endpoint. Table order is significant:
// the first keyword contained in the lower-cased input wins.
type Route struct {
	Keyword  string       `yaml:"keyword"`
	Endpoint rag.Endpoint `yaml:"endpoint"`
}

// DefaultRoutes returns the fixed advice routing table used by the primary
// chat view
func DefaultRoutes() []Route {
	return []Route{
		{Keyword: "financial assessment", Endpoint: rag.EndpointFinancialAssessment},
		{Keyword: "goal setting", Endpoint: rag.EndpointGoalSetting},
		{Keyword: "tax planning", Endpoint: rag.EndpointTaxPlanning},
		{Keyword: "budgeting", Endpoint: rag.EndpointBudgeting},
		{Keyword: "retirement planning", Endpoint: rag.EndpointRetirementPlanning},
	}
}

// CompareRoutes returns the routing table used by the comparison view,
// which additionally recognizes monitoring queries
func CompareRoutes() []Route {
	return append(DefaultRoutes(), Route{Keyword: "monitoring", Endpoint: rag.EndpointMonitoring})
}

// routeTableFile is the YAML layout of an external routing table
type routeTableFile struct {
	Routes          []Route      `yaml:"routes"`
	DefaultEndpoint rag.Endpoint `yaml:"default_endpoint"`
}

// LoadRoutes reads a routing table from a YAML file. The returned default
// endpoint is empty when the file does not set one.
func LoadRoutes(path string) ([]Route, rag.Endpoint, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read routes file %s: %w", path, err)
	}

	var table routeTableFile
	if err := yaml.Unmarshal(f, &table); err != nil {
		return nil, "", fmt.Errorf("failed to parse routes file %s: %w", path, err)
	}

	if len(table.Routes) == 0 {
		return nil, "", fmt.Errorf("routes file %s contains no routes", path)
	}

	return table.Routes, table.DefaultEndpoint, nil
}

// selectEndpoint scans routes in order, testing case-insensitive substring
// containment of each keyword, and falls back to def when nothing matches
func selectEndpoint(routes []Route, text string, def rag.Endpoint) rag.Endpoint {
	lowered := strings.ToLower(text)
	for _, route := range routes {
		if strings.Contains(lowered, strings.ToLower(route.Keyword)) {
			return route.Endpoint
		}
	}
	return def
}
