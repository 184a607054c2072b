package niidg

import (
	"fmt"
	"os"
	"sync"
)

// Default context source: the GitHub tree that serves the per-type context
// documents referenced from serialized crates. The NIIDG_GH_REPO and
// NIIDG_GH_REF environment variables override the defaults at startup.
const (
	DefaultGHRepo = "ivis-tsukioka/nii-dg-fork"
	DefaultGHRef  = "demo-myschema-01"
)

var (
	ctxMu   sync.RWMutex
	ctxRepo = envOr("NIIDG_GH_REPO", DefaultGHRepo)
	ctxRef  = envOr("NIIDG_GH_REF", DefaultGHRef)
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetContextSource overrides the GitHub repository ("owner/name") and ref
// (branch or tag) used to build per-type context URIs. Empty arguments keep
// the current value.
func SetContextSource(repo, ref string) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	if repo != "" {
		ctxRepo = repo
	}
	if ref != "" {
		ctxRef = ref
	}
}

// ContextSource returns the configured repository and ref.
func ContextSource() (repo, ref string) {
	ctxMu.RLock()
	defer ctxMu.RUnlock()
	return ctxRepo, ctxRef
}

// ContextURL builds the per-type context URI for an entity type of a
// profile.
func ContextURL(profile, entity string) string {
	repo, ref := ContextSource()
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/schema/context/%s/%s.json", repo, ref, profile, entity)
}
