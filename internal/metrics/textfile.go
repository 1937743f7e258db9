package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileSystemError("cannot create metrics directory").WithCause(err).
			WithContext("path", path).Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.FileSystemError("cannot write metrics textfile").WithCause(err).
			WithContext("path", path).Build()
	}
	return nil
}
