package version

import (
	"fmt"
	"io"
	"os"

	"github.com/astroflix-site/reistream/internal/storage"
)

const (
	Version = "1.0.0"
)

func HasVersionArg() bool {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		return arg == "--version" || arg == "-version" || arg == "-v"
	}
	return false
}

// ShowVersion reports the build version and which device store backs the session
func ShowVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Reistream v%s", Version)
	if storage.IsCgoEnabled {
		_, _ = fmt.Fprintln(w, " (with SQLite storage)")
	} else {
		_, _ = fmt.Fprintln(w, " (in-memory storage, built without cgo)")
	}
}
