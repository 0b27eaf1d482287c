// Package directives tracks the %YAML and %TAG declarations of a stream.
package directives

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// DefaultVersion is the version assumed when no %YAML directive is given.
const DefaultVersion = "1.2"

// defaultTags returns the handle table every document starts from.
func defaultTags() map[string]string {
	return map[string]string{"!!": "tag:yaml.org,2002:"}
}

var versionRe = regexp.MustCompile(`^\d+\.\d+$`)

// ErrorFunc receives a directive error. offset is relative to the start of
// the directive line.
type ErrorFunc func(offset int, message string, warning bool)

// Directives holds the directive state of a stream or, once captured by
// AtDocument, of a single document.
type Directives struct {
	// Version is the declared format version, "1.1" or "1.2".
	Version string
	// Explicit reports whether a %YAML directive was present.
	Explicit bool
	// Tags maps tag handles to prefixes.
	Tags map[string]string

	// DocStart is set when the document has an explicit "---" marker.
	DocStart bool
	// DocEnd is set when the document has an explicit "..." marker.
	DocEnd bool

	atNextDocument bool
}

// New returns the directive state of a fresh stream.
func New(version string) *Directives {
	if version == "" {
		version = DefaultVersion
	}
	return &Directives{Version: version, Tags: defaultTags()}
}

// Clone returns a deep copy of d.
func (d *Directives) Clone() *Directives {
	c := *d
	c.Tags = maps.Clone(d.Tags)
	return &c
}

// AtDocument returns the point-in-time copy captured by the next document.
//
// Under 1.2 semantics the stream state is reset once captured, so
// directives do not carry over to later documents. Under 1.1 they persist
// until the next directive line appears.
func (d *Directives) AtDocument() *Directives {
	res := &Directives{Version: d.Version, Explicit: d.Explicit, Tags: maps.Clone(d.Tags)}
	switch d.Version {
	case "1.1":
		d.atNextDocument = true
	case "1.2":
		d.atNextDocument = false
		d.Explicit = false
		d.Tags = defaultTags()
	}
	return res
}

// Add parses a single directive line and updates d. Malformed lines are
// reported through onError, and Add returns false.
func (d *Directives) Add(line string, onError ErrorFunc) bool {
	if d.atNextDocument {
		d.Version = "1.1"
		d.Explicit = false
		d.Tags = defaultTags()
		d.atNextDocument = false
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		onError(0, "Empty directive", false)
		return false
	}
	name, parts := parts[0], parts[1:]
	switch name {
	case "%TAG":
		if len(parts) != 2 {
			onError(0, "%TAG directive should contain exactly two parts", false)
			if len(parts) < 2 {
				return false
			}
		}
		d.Tags[parts[0]] = parts[1]
		return true
	case "%YAML":
		d.Explicit = true
		if len(parts) != 1 {
			onError(0, "%YAML directive should contain exactly one part", false)
			return false
		}
		version := parts[0]
		if version == "1.1" || version == "1.2" {
			d.Version = version
			return true
		}
		onError(6, "Unsupported YAML version "+version, versionRe.MatchString(version))
		return false
	default:
		onError(0, "Unknown directive "+name, true)
		return false
	}
}

// TagName resolves a shorthand tag such as "!!str" or "!e!foo" against the
// handle table. Verbatim tags "!<...>" are returned unwrapped.
func (d *Directives) TagName(source string) (string, error) {
	if source == "!" {
		return "!", nil
	}
	if !strings.HasPrefix(source, "!") {
		return "", fmt.Errorf("not a tag: %s", source)
	}
	if strings.HasPrefix(source, "!<") {
		verbatim, ok := strings.CutSuffix(source[2:], ">")
		if !ok {
			return "", fmt.Errorf("verbatim tags must end with a >")
		}
		return verbatim, nil
	}
	handle, suffix := source, ""
	if i := strings.IndexByte(source[1:], '!'); i >= 0 {
		handle, suffix = source[:i+2], source[i+2:]
	} else {
		handle, suffix = "!", source[1:]
	}
	prefix, ok := d.Tags[handle]
	if !ok {
		if handle == "!" {
			return source, nil
		}
		return "", fmt.Errorf("could not resolve tag: %s", source)
	}
	if suffix == "" {
		return "", fmt.Errorf("the %s tag has no suffix", source)
	}
	return prefix + suffix, nil
}

// String renders the directive lines needed to reproduce d, followed by
// the directives-end marker. It returns "" when nothing needs declaring.
func (d *Directives) String() string {
	var lines []string
	if d.Explicit {
		lines = append(lines, "%YAML "+d.Version)
	}
	for _, handle := range slices.Sorted(maps.Keys(d.Tags)) {
		prefix := d.Tags[handle]
		if handle == "!!" && prefix == "tag:yaml.org,2002:" {
			continue
		}
		lines = append(lines, "%TAG "+handle+" "+prefix)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n---"
}
