package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemeManifestLoader loads a theme's manifest from a directory on disk.
type ThemeManifestLoader interface {
	Load(themeDir string) (*gotheme.Manifest, error)
}

// FSThemeManifestLoader loads a manifest from the local filesystem, the way
// a project's format_config names a theme directory relative to the
// project root.
type FSThemeManifestLoader struct{}

func (FSThemeManifestLoader) Load(themeDir string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themeDir))
	if cleaned == "" {
		return nil, fmt.Errorf("render: theme directory required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeResolver resolves a theme directory + variant to a gotheme.Selection,
// caching manifests by directory so a long-lived preview server doesn't
// reload and re-register the same theme on every request.
type ThemeResolver struct {
	registry       *gotheme.MemoryRegistry
	loader         ThemeManifestLoader
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

// NewThemeResolver builds a ThemeResolver. loader defaults to
// FSThemeManifestLoader; defaultTheme/defaultVariant seed gotheme.Selector's
// fallback when Resolve is called with an empty variant.
func NewThemeResolver(defaultTheme, defaultVariant string, loader ThemeManifestLoader) *ThemeResolver {
	if loader == nil {
		loader = FSThemeManifestLoader{}
	}
	return &ThemeResolver{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

// Resolve loads (if needed) and registers the manifest at themeDir, then
// selects variant, falling back to the resolver's default variant when
// variant is empty.
func (r *ThemeResolver) Resolve(themeDir, variant string) (*gotheme.Selection, error) {
	manifest, err := r.ensureManifest(themeDir)
	if err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       r.registry,
		DefaultTheme:   r.defaultTheme,
		DefaultVariant: r.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = r.defaultVariant
	}

	selection, err := selector.Select(manifest.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %s: %w", manifest.Name, err)
	}
	return selection, nil
}

func (r *ThemeResolver) ensureManifest(themeDir string) (*gotheme.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := filepath.Clean(strings.TrimSpace(themeDir))
	if manifest, ok := r.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := r.loader.Load(themeDir)
	if err != nil {
		return nil, fmt.Errorf("render: load theme manifest from %s: %w", themeDir, err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("render: theme manifest at %s has no name", themeDir)
	}

	if err := r.registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("render: register theme manifest: %w", err)
	}
	r.manifests[key] = manifest
	return manifest, nil
}

// StylesheetAssets returns a selection's CSS asset paths, relative to the
// theme directory the manifest was loaded from, merging variant-specific
// files over the base manifest's the way gotheme's own Variants
// representation implies overriding.
func StylesheetAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	files := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(files)+len(v.Assets.Files))
			for name, path := range files {
				merged[name] = path
			}
			for name, path := range v.Assets.Files {
				merged[name] = path
			}
			files = merged
		}
	}

	var out []string
	for name, path := range files {
		if strings.EqualFold(filepath.Ext(name), ".css") || strings.EqualFold(filepath.Ext(path), ".css") {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
