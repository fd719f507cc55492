package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"jssc/config"
	"jssc/jss"
)

// Format serializes tree as a JavaScript statement: export prefix followed by
// JSON text, semicolon and new line.
func Format(tree *jss.Object, cfg *config.OutputConfig) ([]byte, error) {
	data, err := tree.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize result: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(cfg.Export)
	if cfg.Pretty {
		if err := json.Indent(&buf, data, "", cfg.Indent); err != nil {
			return nil, fmt.Errorf("unable to indent result: %w", err)
		}
	} else {
		buf.Write(data)
	}
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}
