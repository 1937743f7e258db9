package submission

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// SheetWriter renders the printable description sheet of a submission.
type SheetWriter interface {
	WriteSheet(w io.Writer, s *Submission) error
}

// Bundle lists the files WriteBundle produced. Empty fields were not written.
type Bundle struct {
	YAML string
	PDF  string
	Zip  string
}

// Files returns the written paths in write order.
func (b Bundle) Files() []string {
	var out []string
	for _, p := range []string{b.YAML, b.PDF, b.Zip} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteBundle writes <base>.yaml, <base>.pdf when sheet is non-nil, and
// <base>.zip holding the YAML and the renamed figures when there are figures.
func (s *Submission) WriteBundle(dir string, sheet SheetWriter) (Bundle, error) {
	var b Bundle
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return b, fsError(err, dir)
	}

	doc, err := s.DescriptorYAML()
	if err != nil {
		return b, errors.InternalError("cannot encode descriptor").WithCause(err).Build()
	}
	yamlPath := filepath.Join(dir, s.BaseName+".yaml")
	if err := os.WriteFile(yamlPath, doc, 0o644); err != nil {
		return b, fsError(err, yamlPath)
	}
	b.YAML = yamlPath

	if sheet != nil {
		var buf bytes.Buffer
		if err := sheet.WriteSheet(&buf, s); err != nil {
			return b, errors.RenderError("cannot render description sheet").WithCause(err).Build()
		}
		pdfPath := filepath.Join(dir, s.BaseName+".pdf")
		if err := os.WriteFile(pdfPath, buf.Bytes(), 0o644); err != nil {
			return b, fsError(err, pdfPath)
		}
		b.PDF = pdfPath
	}

	if len(s.FigureFiles) == 0 {
		return b, nil
	}
	zipPath := filepath.Join(dir, s.BaseName+".zip")
	if err := s.writeZip(zipPath, doc); err != nil {
		_ = os.Remove(zipPath)
		return b, err
	}
	b.Zip = zipPath
	return b, nil
}

func (s *Submission) writeZip(path string, doc []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fsError(err, path)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := addZipEntry(zw, s.BaseName+".yaml", bytes.NewReader(doc)); err != nil {
		return fsError(err, path)
	}
	for i, src := range s.FigureFiles {
		in, err := os.Open(src)
		if err != nil {
			return fsError(err, src)
		}
		err = addZipEntry(zw, s.FigureName(i), in)
		_ = in.Close()
		if err != nil {
			return fsError(fmt.Errorf("add %s: %w", src, err), path)
		}
	}
	if err := zw.Close(); err != nil {
		return fsError(err, path)
	}
	return f.Close()
}

func addZipEntry(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func fsError(err error, path string) error {
	return errors.FileSystemError("cannot write submission bundle").WithCause(err).
		WithContext("path", path).Build()
}
