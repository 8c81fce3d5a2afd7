// Package script renders the data-transformation script attached to a
// transform node. This is string templating over the node's declared outputs
// and process logic, not compilation.
package script

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tabflow/tabflow/pkg/models"
)

// ErrNotTransform indicates script generation was requested for a node that
// is not a transform node.
var ErrNotTransform = errors.New("node is not a transform node")

const transformScript = `# {{ .Label }}
# Generated {{ now }}
{{- if .Description }}
# {{ .Description }}
{{- end }}

def transform(rows):
{{- if .ProcessLogic }}
    # Process logic:
{{- range splitLines .ProcessLogic }}
    # {{ . }}
{{- end }}
{{- end }}
    output = []
    for row in rows:
        record = {}
{{- range .OutputColumns }}
        record[{{ printf "%q" .Name }}] = None  # {{ .Type }}{{ if .IsList }} list{{ end }}
{{- end }}
        output.append(record)
    return output
`

// Generate renders the transform script for the node from its label,
// description, output columns and process logic.
func Generate(node *models.FlowNode) (string, error) {
	if node == nil || !node.IsTransform() {
		return "", ErrNotTransform
	}

	tmpl, err := template.
		New("transform").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"splitLines": func(s string) []string {
				return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
			},
		}).Parse(transformScript)
	if err != nil {
		return "", fmt.Errorf("failed to parse transform template: %w", err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, node.Data); err != nil {
		return "", fmt.Errorf("failed to render transform script for node %s: %w", node.ID, err)
	}

	return buf.String(), nil
}
