package model

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Kind identifies one of the four entity kinds carried by Discogs dumps.
type Kind uint8

const (
	KindArtist Kind = iota
	KindLabel
	KindMaster
	KindRelease
)

// String returns the entity name used in summaries and error messages.
func (k Kind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindLabel:
		return "label"
	case KindMaster:
		return "master"
	case KindRelease:
		return "release"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ElementTag returns the XML tag of one entity element.
func (k Kind) ElementTag() string { return k.String() }

// ContainerTag returns the XML tag of the document root container.
func (k Kind) ContainerTag() string {
	switch k {
	case KindArtist:
		return "artists"
	case KindLabel:
		return "labels"
	case KindMaster:
		return "masters"
	case KindRelease:
		return "releases"
	}
	return ""
}

// Table returns the parent table name used by relational writers.
func (k Kind) Table() string {
	if k == KindMaster {
		return "masterrelease"
	}
	return k.String()
}

// NestedContainer reports whether dumps of this kind repeat the entity tag
// inside a nested collection, and the root container tag a true top-level
// element must sit in. Only labels nest: a <label> also appears inside
// <sublabels>, so the scanner has to check the enclosing container. The
// other kinds skip the check entirely.
func (k Kind) NestedContainer() (string, bool) {
	if k == KindLabel {
		return k.ContainerTag(), true
	}
	return "", false
}

// Dump filenames look like discogs_20250101_artists.xml.gz, optionally with
// a _sample_N suffix produced by the sampler.
var filenamePattern = regexp.MustCompile(`^discogs_\d{8}_(artists|labels|masters|releases)(?:_sample_\d+)?\.xml(?:\.gz)?$`)

// KindFromPath derives the entity kind from a dump filename.
func KindFromPath(path string) (Kind, error) {
	name := filepath.Base(path)
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("model: unrecognized dump filename %q", name)
	}
	switch m[1] {
	case "artists":
		return KindArtist, nil
	case "labels":
		return KindLabel, nil
	case "masters":
		return KindMaster, nil
	}
	return KindRelease, nil
}

// ParseKind maps an explicit entity name ("artist" or "artists") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "artist", "artists":
		return KindArtist, nil
	case "label", "labels":
		return KindLabel, nil
	case "master", "masters":
		return KindMaster, nil
	case "release", "releases":
		return KindRelease, nil
	}
	return 0, fmt.Errorf("model: unknown entity kind %q", s)
}
