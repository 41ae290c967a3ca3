package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/mappificator/mapping"
	"gopkg.in/yaml.v3"
)

// ReadCorrections parses a manual correction table: a YAML (or JSON) map
// from parameter id, class.method(desc)@index, to name. An empty document
// is an empty table.
func ReadCorrections(r io.Reader, source string) (map[mapping.ParamKey]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &SyntaxError{Source: source, Line: yamlErrorLine(err), Msg: err.Error()}
	}

	out := make(map[mapping.ParamKey]string, len(raw))
	for id, name := range raw {
		key, err := mapping.ParseParamKey(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if name == "" {
			return nil, fmt.Errorf("%s: empty name for %s", source, id)
		}
		out[key] = name
	}
	log.Debugf("read %d corrections from %s", len(out), source)
	return out, nil
}

func yamlErrorLine(err error) int {
	var line int
	if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
		fmt.Sscanf(te.Errors[0], "line %d:", &line)
		return line
	}
	fmt.Sscanf(err.Error(), "yaml: line %d:", &line)
	return line
}
