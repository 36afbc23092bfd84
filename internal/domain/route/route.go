// Package route maps logical job types to upstream model references.
package route

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

// Reference identifies an upstream model. An empty Version means the provider
// resolves the latest published version at submission time.
type Reference struct {
	Owner   string
	Name    string
	Version string
}

// ParseReference accepts "owner/name" or "owner/name:version".
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	model, version, hasVersion := strings.Cut(raw, ":")
	owner, name, ok := strings.Cut(model, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Reference{}, fmt.Errorf("invalid model reference %q: want owner/name[:version]", raw)
	}
	if hasVersion && strings.TrimSpace(version) == "" {
		return Reference{}, fmt.Errorf("invalid model reference %q: empty version", raw)
	}
	return Reference{Owner: owner, Name: name, Version: strings.TrimSpace(version)}, nil
}

// Model returns the owner/name part of the reference.
func (r Reference) Model() string {
	return r.Owner + "/" + r.Name
}

// Pinned reports whether the reference names an exact version.
func (r Reference) Pinned() bool {
	return r.Version != ""
}

func (r Reference) String() string {
	if r.Pinned() {
		return r.Model() + ":" + r.Version
	}
	return r.Model()
}

// Policy holds the per-route input rules applied by the validator.
type Policy struct {
	// MaxOutputs caps the requested output count; zero means the route has no count parameter.
	MaxOutputs     int
	DefaultOutputs int
	// TriggerToken must appear in the prompt; TriggerTemplate is a fmt pattern with one %s
	// receiving the caller's prompt when the token is missing.
	TriggerToken    string
	TriggerTemplate string
	// Defaults are fixed upstream parameters sent with every submission. Read-only.
	Defaults map[string]any
}

// Route binds a job type key to a model reference. Kind names the request
// variant accepted by the route and defaults to Key.
type Route struct {
	Key       string
	Kind      string
	Reference Reference
	Policy    Policy
}

// Registry is the immutable route table built at startup.
type Registry struct {
	routes map[string]Route
}

// NewRegistry validates the routes and freezes them into a registry.
func NewRegistry(routes []Route) (*Registry, error) {
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			return nil, fmt.Errorf("route with reference %s has no key", r.Reference)
		}
		if _, exists := table[key]; exists {
			return nil, fmt.Errorf("duplicate route %q", key)
		}
		if r.Reference.Owner == "" || r.Reference.Name == "" {
			return nil, fmt.Errorf("route %q has no model reference", key)
		}
		if r.Policy.TriggerToken != "" && !strings.Contains(r.Policy.TriggerTemplate, "%s") {
			return nil, fmt.Errorf("route %q trigger template must contain %%s", key)
		}
		if r.Policy.TriggerToken != "" && !strings.Contains(r.Policy.TriggerTemplate, r.Policy.TriggerToken) {
			return nil, fmt.Errorf("route %q trigger template must contain token %q", key, r.Policy.TriggerToken)
		}
		r.Key = key
		if r.Kind == "" {
			r.Kind = key
		}
		r.Policy.Defaults = copyDefaults(r.Policy.Defaults)
		table[key] = r
	}
	return &Registry{routes: table}, nil
}

// Resolve returns the route for key or a RouteNotFound error.
func (r *Registry) Resolve(ctx context.Context, key string) (Route, error) {
	route, ok := r.routes[key]
	if !ok {
		return Route{}, platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeRouteNotFound,
			fmt.Sprintf("Unknown job type: %s", key),
			nil,
			"route-not-found",
			map[string]any{"route_key": key},
		)
	}
	return route, nil
}

// Keys lists the registered job types in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Routes returns every registered route ordered by key.
func (r *Registry) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, k := range r.Keys() {
		out = append(out, r.routes[k])
	}
	return out
}

func copyDefaults(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
