// Package gateway holds the ingress routing table, the per-backend reverse
// proxies and the health status board.
package gateway

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sysocial/sysocial-backend/internal/config"
	"gopkg.in/yaml.v3"
)

// Service is one backend the gateway forwards to.
type Service struct {
	Name       string        `yaml:"name" json:"name"`
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	HealthPath string        `yaml:"health_path" json:"health_path"`
	Timeout    time.Duration `yaml:"timeout" json:"-"`

	target *url.URL
}

// Route binds a path prefix to a service.
type Route struct {
	Prefix    string `yaml:"prefix" json:"prefix"`
	Service   string `yaml:"service" json:"service"`
	Protected bool   `yaml:"protected" json:"protected"`
}

// Table is the immutable routing table. It is safe for concurrent use
// because nothing mutates it after NewTable returns.
type Table struct {
	routes   []Route // longest prefix first
	services map[string]*Service
	names    []string
}

// tableFile is the layout of GATEWAY_ROUTES_FILE.
type tableFile struct {
	Services []Service `yaml:"services"`
	Routes   []Route   `yaml:"routes"`
}

// NewTable validates services and routes and builds the table.
// defaultTimeout applies to services without their own timeout.
func NewTable(services []Service, routes []Route, defaultTimeout time.Duration) (*Table, error) {
	t := &Table{services: make(map[string]*Service, len(services))}

	for _, s := range services {
		if s.Name == "" {
			return nil, fmt.Errorf("service without name")
		}
		if _, dup := t.services[s.Name]; dup {
			return nil, fmt.Errorf("service %q declared twice", s.Name)
		}
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("service %q: invalid base_url %q", s.Name, s.BaseURL)
		}
		if s.HealthPath == "" {
			s.HealthPath = "/health"
		}
		if s.Timeout <= 0 {
			s.Timeout = defaultTimeout
		}
		s.target = u
		svc := s
		t.services[s.Name] = &svc
		t.names = append(t.names, s.Name)
	}
	sort.Strings(t.names)

	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		r.Prefix = "/" + strings.Trim(r.Prefix, "/")
		if r.Prefix == "/" {
			return nil, fmt.Errorf("route for %q: prefix must not be the root", r.Service)
		}
		if seen[r.Prefix] {
			return nil, fmt.Errorf("prefix %q declared twice", r.Prefix)
		}
		if _, ok := t.services[r.Service]; !ok {
			return nil, fmt.Errorf("prefix %q: unknown service %q", r.Prefix, r.Service)
		}
		seen[r.Prefix] = true
		t.routes = append(t.routes, r)
	}
	sort.SliceStable(t.routes, func(i, j int) bool {
		return len(t.routes[i].Prefix) > len(t.routes[j].Prefix)
	})

	return t, nil
}

// LoadTable builds the table from GATEWAY_ROUTES_FILE when set and from the
// service URL variables otherwise.
func LoadTable(cfg *config.Config) (*Table, error) {
	if cfg.RoutesFile == "" {
		return NewTable(defaultServices(cfg), defaultRoutes(), cfg.ProxyTimeout)
	}

	raw, err := os.ReadFile(cfg.RoutesFile)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseTable(raw, cfg.ProxyTimeout)
}

// ParseTable builds a table from YAML.
func ParseTable(raw []byte, defaultTimeout time.Duration) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	return NewTable(f.Services, f.Routes, defaultTimeout)
}

func defaultServices(cfg *config.Config) []Service {
	return []Service{
		{Name: "auth-service", BaseURL: cfg.AuthServiceURL},
		{Name: "user-service", BaseURL: cfg.UserServiceURL},
		{Name: "cursosturmas-service", BaseURL: cfg.CourseServiceURL},
	}
}

func defaultRoutes() []Route {
	return []Route{
		{Prefix: "/api/v1/auth", Service: "auth-service"},
		{Prefix: "/api/v1/users", Service: "user-service", Protected: true},
		{Prefix: "/api/v1/cursos", Service: "cursosturmas-service"},
		{Prefix: "/api/v1/turmas", Service: "cursosturmas-service"},
		{Prefix: "/api/v1/matriculas", Service: "cursosturmas-service", Protected: true},
	}
}

// Match returns the route with the longest prefix that covers path on a
// segment boundary, so /api/v1/users matches /api/v1/users/7 but not
// /api/v1/usersx.
func (t *Table) Match(path string) (Route, *Service, bool) {
	for _, r := range t.routes {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r, t.services[r.Service], true
		}
	}
	return Route{}, nil, false
}

// Services returns copies of all backends ordered by name.
func (t *Table) Services() []Service {
	out := make([]Service, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, *t.services[n])
	}
	return out
}

// Prefixes returns the prefixes routed to the named service.
func (t *Table) Prefixes(name string) []string {
	var out []string
	for _, r := range t.routes {
		if r.Service == name {
			out = append(out, r.Prefix)
		}
	}
	sort.Strings(out)
	return out
}

// HealthURL is the health check address of s.
func (s *Service) HealthURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.HealthPath
}
