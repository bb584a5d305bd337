package kerneldaemon

import (
	"fmt"
	"strings"

	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// mimePriority orders MIME types from richest to plainest for picking the
// single best representation of a display_data/execute_result bundle.
var mimePriority = []string{
	"text/html",
	"image/svg+xml",
	"image/png",
	"image/jpeg",
	"text/markdown",
	"text/latex",
	"text/plain",
}

func filterInfo(detail string) sourcemap.SourceInfo {
	return sourcemap.FilterProvenance{Filter: "kerneldaemon", Detail: detail}
}

// OutputsToBlocks converts the outputs collected from one Execute call into
// document blocks insertable into the surrounding tree in place of the
// code cell that produced them.
func OutputsToBlocks(outputs []CellOutput) []document.Block {
	blocks := make([]document.Block, 0, len(outputs))
	for _, out := range outputs {
		switch out.Kind {
		case CellOutputStream:
			attr := document.NewAttr()
			attr.Class = []string{"cell-output-" + out.StreamName}
			blocks = append(blocks, document.NewCodeBlock(filterInfo("stream"), attr, out.Text))
		case CellOutputDisplayData, CellOutputExecuteResult:
			if block := mimeBundleToBlock(out.Data); block != nil {
				blocks = append(blocks, block)
			}
		case CellOutputError:
			attr := document.NewAttr()
			attr.Class = []string{"cell-output-error"}
			text := formatError(out.ErrorName, out.ErrorValue, out.Traceback)
			blocks = append(blocks, document.NewCodeBlock(filterInfo("error"), attr, text))
		}
	}
	return blocks
}

// mimeBundleToBlock picks the richest representation present in data and
// converts it to a block, or nil if no known MIME type is present.
func mimeBundleToBlock(data MimeBundle) document.Block {
	for _, mime := range mimePriority {
		if content, ok := data[mime]; ok {
			return convertMimeContent(mime, content)
		}
	}
	return nil
}

func convertMimeContent(mime string, content any) document.Block {
	switch mime {
	case "text/plain":
		attr := document.NewAttr()
		attr.Class = []string{"cell-output"}
		return document.NewCodeBlock(filterInfo("text/plain"), attr, extractText(content))
	case "text/html":
		return document.NewRawBlock(filterInfo("text/html"), "html", extractText(content))
	case "text/latex":
		return document.NewRawBlock(filterInfo("text/latex"), "latex", extractText(content))
	case "text/markdown":
		attr := document.NewAttr()
		attr.Class = []string{"cell-output-markdown"}
		para := document.NewParagraph(filterInfo("text/markdown"), []document.Inline{
			document.NewStr(filterInfo("text/markdown"), extractText(content)),
		})
		return document.NewDiv(filterInfo("text/markdown"), attr, []document.Block{para})
	case "image/png", "image/jpeg", "image/svg+xml":
		attr := document.NewAttr()
		attr.Class = []string{"cell-output-display"}
		placeholder := fmt.Sprintf("[Image output: %s]", imageExtension(mime))
		para := document.NewParagraph(filterInfo(mime), []document.Inline{
			document.NewStr(filterInfo(mime), placeholder),
		})
		return document.NewDiv(filterInfo(mime), attr, []document.Block{para})
	default:
		return nil
	}
}

func imageExtension(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/svg+xml":
		return "svg"
	default:
		return "bin"
	}
}

// extractText accommodates Jupyter's habit of sending text content as
// either a single string or an array of strings to be joined.
func extractText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "")
	case []string:
		return strings.Join(v, "")
	default:
		return ""
	}
}

func formatError(ename, evalue string, traceback []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", ename, evalue)
	if len(traceback) > 0 {
		b.WriteString("\n")
		for _, line := range traceback {
			b.WriteString(stripANSICodes(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// stripANSICodes removes ANSI escape sequences (e.g. color codes in a
// traceback) from s.
func stripANSICodes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			i += 2
			for i < len(runes) && !isASCIILetter(runes[i]) {
				i++
			}
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
