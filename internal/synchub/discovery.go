package synchub

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirNames names directories Discovery never descends into: hidden dirs
// (handled by prefix check), dependency dirs, and known render output dirs.
var skippedDirNames = map[string]bool{
	"node_modules": true,
	"_site":        true,
	"_book":        true,
	"_freeze":      true,
}

var configFileNames = map[string]bool{
	"_quarto.yml":  true,
	"_quarto.yaml": true,
}

// binaryExtensions recognizes common binary resource file extensions.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".pdf": true,
	".woff": true, ".woff2": true, ".ttf": true, ".zip": true, ".ico": true,
}

// DiscoveryResult is the sorted triple of file lists Discovery produces.
type DiscoveryResult struct {
	QMDFiles    []string
	ConfigFiles []string
	BinaryFiles []string
}

// Discover walks projectRoot, skipping hidden directories, node_modules,
// and known render output directories, and returns sorted lists of `.qmd`
// files, project config files, and recognized binary files.
func Discover(projectRoot string) (DiscoveryResult, error) {
	var result DiscoveryResult

	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || skippedDirNames[name] {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case strings.EqualFold(filepath.Ext(name), ".qmd"):
			result.QMDFiles = append(result.QMDFiles, rel)
		case configFileNames[name]:
			result.ConfigFiles = append(result.ConfigFiles, rel)
		case binaryExtensions[strings.ToLower(filepath.Ext(name))]:
			result.BinaryFiles = append(result.BinaryFiles, rel)
		}
		return nil
	})
	if err != nil {
		return DiscoveryResult{}, err
	}

	sort.Strings(result.QMDFiles)
	sort.Strings(result.ConfigFiles)
	sort.Strings(result.BinaryFiles)
	return result, nil
}

// MatchGlob reports whether rel matches the doublestar glob pattern, used
// when a caller needs to filter Discover's results against a project's
// include/exclude configuration.
func MatchGlob(pattern, rel string) bool {
	matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && matched
}
