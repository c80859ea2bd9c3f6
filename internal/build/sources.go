package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// ResolveError represents a problem with one of the input paths.
// ---------------------------------------------------------------------------

type ResolveError struct {
	Message string
	File    string
}

func (e *ResolveError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Source is one input file of a build.
type Source struct {
	Arg  string // path as given on the command line
	Path string // absolute path
	Name string // base name of every artifact built from this file
}

// ResolveSources turns command-line paths into Sources. It rejects missing
// files and directories, drops a file named twice, and refuses two files
// whose artifacts would overwrite each other.
func ResolveSources(args []string) ([]Source, []*ResolveError) {
	var (
		sources []Source
		errs    []*ResolveError
		seen    = map[string]bool{}
		names   = map[string]string{} // artifact name -> first source
	)

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			errs = append(errs, &ResolveError{File: arg, Message: fmt.Sprintf("cannot resolve path: %v", err)})
			continue
		}

		info, err := os.Stat(abs)
		switch {
		case os.IsNotExist(err):
			errs = append(errs, &ResolveError{File: arg, Message: "file does not exist"})
			continue
		case err != nil:
			errs = append(errs, &ResolveError{File: arg, Message: err.Error()})
			continue
		case info.IsDir():
			errs = append(errs, &ResolveError{File: arg, Message: "is a directory"})
			continue
		}

		if seen[abs] {
			continue
		}
		seen[abs] = true

		name := ArtifactName(abs)
		if first, ok := names[name]; ok {
			errs = append(errs, &ResolveError{
				File:    arg,
				Message: fmt.Sprintf("output name %q already used by %s", name, first),
			})
			continue
		}
		names[name] = arg

		sources = append(sources, Source{Arg: arg, Path: abs, Name: name})
	}

	return sources, errs
}

// ArtifactName derives the output base name from a source path.
func ArtifactName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
