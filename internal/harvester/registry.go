package harvester

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
)

const (
	// FieldSeparator splits a registry line into its fields.
	FieldSeparator = "$"
	// FieldCount is the exact number of fields a registry line must have:
	// base URL, playlist path, label.
	FieldCount = 3
)

// LoadRegistry reads the registry file at path and returns its well-formed
// descriptors in file order, plus the number of rejected lines. Only a file
// that cannot be opened or read returns an error.
func LoadRegistry(fs afero.Fs, path string, log *slog.Logger) ([]Descriptor, int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrRegistryUnreadable, path, err)
	}
	defer f.Close()

	ds, rejected, err := ParseRegistry(f, log)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrRegistryUnreadable, path, err)
	}
	return ds, rejected, nil
}

// ParseRegistry reads "base_url$playlist_path$label" records from r. Each
// rejected line is logged once at error level and skipped; blank lines are
// ignored.
func ParseRegistry(r io.Reader, log *slog.Logger) ([]Descriptor, int, error) {
	var (
		out      []Descriptor
		rejected int
		lineNo   int
	)

	br := bufio.NewReader(r)
	for eof := false; !eof; {
		raw, err := br.ReadString('\n')
		switch {
		case err == io.EOF:
			eof = true
			if raw == "" {
				continue
			}
		case err != nil:
			return nil, rejected, err
		}

		lineNo++
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		d, err := parseLine(line, lineNo)
		if err != nil {
			log.Error("registry line rejected",
				slog.Int("line", lineNo),
				slog.String("content", truncate(line, maxLoggedLine)),
				slog.String("error", err.Error()))
			rejected++
			continue
		}
		out = append(out, d)
	}
	return out, rejected, nil
}

// maxLoggedLine bounds how much of a rejected line is copied into the log.
const maxLoggedLine = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func parseLine(line string, lineNo int) (Descriptor, error) {
	parts := strings.Split(line, FieldSeparator)
	if len(parts) != FieldCount {
		return Descriptor{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, FieldCount, len(parts))
	}

	label := strings.TrimSpace(parts[2])
	if !validLabel(label) {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	return Descriptor{
		BaseURL:      strings.TrimSpace(parts[0]),
		PlaylistPath: strings.TrimSpace(parts[1]),
		Label:        label,
		Line:         lineNo,
	}, nil
}

// validLabel reports whether label can be used as a single directory name
// below the output root.
func validLabel(label string) bool {
	if label == "" || label == "." || label == ".." {
		return false
	}
	return !strings.ContainsAny(label, `/\`)
}
