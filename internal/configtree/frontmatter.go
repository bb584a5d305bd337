package configtree

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// SplitFrontMatter extracts a document's YAML front matter (delimited by
// "---" lines) into a ConfigValue tree and returns the remaining body bytes
// unchanged. Documents with no front matter return a nil ConfigValue and
// the original source as the body.
func SplitFrontMatter(source []byte, file sourcemap.FileId, collector *diagnostic.Collector) (*ConfigValue, []byte, error) {
	var node yaml.Node
	body, err := frontmatter.Parse(bytes.NewReader(source), &node)
	if err != nil {
		return nil, source, err
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, body, nil
	}
	return nodeToValue(node.Content[0], file, collector), body, nil
}
