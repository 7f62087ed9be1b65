package display

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrettyPrintJSON writes v as indented JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Errorf(w, "Error formatting JSON: %s", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

func Errorf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s%s%s\n", Red, fmt.Sprintf(format, args...), Reset)
}

func Infof(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s%s%s\n", Cyan, fmt.Sprintf(format, args...), Reset)
}
