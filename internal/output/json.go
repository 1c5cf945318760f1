package output

import "encoding/json"

// JSONFormatter renders the dataset's underlying value as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format implements Formatter.
func (f *JSONFormatter) Format(data Dataset) (string, error) {
	if data == nil {
		return "", nil
	}

	var (
		out []byte
		err error
	)
	if f.Indent {
		out, err = json.MarshalIndent(data.Value(), "", "  ")
	} else {
		out, err = json.Marshal(data.Value())
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
