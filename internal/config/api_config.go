package config

import (
	"sort"
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginPath() string
	GetPublicPaths() PublicPaths
}

type API struct{}

var _ APIConfig = API{}

// PublicPaths is the allow-list of navigation locations that never trigger a
// redirect to the login entry point.
type PublicPaths map[string]struct{}
type nullValue = struct{}

func (p PublicPaths) IsPublic(path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	_, ok := p[path]
	return ok
}

func (p PublicPaths) String() string {
	var paths []string
	for k := range p {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return strings.Join(paths, ", ")
}

func NewPublicPaths(paths ...string) PublicPaths {
	p := make(PublicPaths, len(paths))
	for _, path := range paths {
		path = strings.TrimSuffix(strings.TrimSpace(path), "/")
		if path == "" {
			continue
		}
		p[path] = nullValue{}
	}
	return p
}

const defaultPublicPaths = "/login,/register,/forgot-password,/reset-password"

func (API) GetAPIBaseURL() string {
	return strings.TrimSuffix(GetEnv("API_BASE_URL", "http://localhost:3000"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 15*time.Second)
}

func (API) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/login")
}

func (a API) GetPublicPaths() PublicPaths {
	paths := NewPublicPaths(strings.Split(GetEnv("PUBLIC_PATHS", defaultPublicPaths), ",")...)
	paths[strings.TrimSuffix(a.GetLoginPath(), "/")] = nullValue{}
	return paths
}
