// Package fingerprint decides whether the inputs of a schema build changed
// since the previous build.
package fingerprint

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/opencontainers/go-digest"
	"go.appointy.com/autoschema/datamodel"
)

// canonical marshals map keys in sorted order so equal values always produce
// equal bytes.
var canonical = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Fingerprint identifies the inputs of one build. It is not safe for
// concurrent use.
type Fingerprint struct {
	// Snapshot is the snapshot the build was made from. Changed may replace
	// it with an equivalent snapshot returned later by the provider.
	Snapshot *datamodel.Snapshot

	ConfigDigest    digest.Digest
	FunctionsDigest digest.Digest

	// classesDigest covers only the classes cfg lets into the schema. It is
	// computed on first use; most comparisons are settled by snapshot
	// identity.
	classesDigest digest.Digest
	cfg           *datamodel.SchemaConfig
}

// New fingerprints a set of build inputs. functionNames are compared as a
// set.
func New(snapshot *datamodel.Snapshot, cfg *datamodel.SchemaConfig, functionNames []string) (*Fingerprint, error) {
	if cfg == nil {
		cfg = &datamodel.SchemaConfig{}
	}
	configDigest, err := digestOf(cfg)
	if err != nil {
		return nil, err
	}

	names := append([]string{}, functionNames...)
	sort.Strings(names)
	functionsDigest, err := digestOf(names)
	if err != nil {
		return nil, err
	}

	return &Fingerprint{
		Snapshot:        snapshot,
		ConfigDigest:    configDigest,
		FunctionsDigest: functionsDigest,
		cfg:             cfg,
	}, nil
}

// ClassesDigest returns the digest of the canonical JSON of the snapshot's
// classes that pass the config's class filter. Edits to filtered out
// classes never change it.
func (f *Fingerprint) ClassesDigest() (digest.Digest, error) {
	if f.classesDigest != "" {
		return f.classesDigest, nil
	}
	var classes []datamodel.ClassDescriptor
	if f.Snapshot != nil {
		classes, _ = datamodel.FilterClasses(f.Snapshot.Classes, f.cfg)
	}
	d, err := digestOf(classes)
	if err != nil {
		return "", err
	}
	f.classesDigest = d
	return d, nil
}

func digestOf(v interface{}) (digest.Digest, error) {
	b, err := canonical.Marshal(v)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(b), nil
}

// Changed reports whether next requires a rebuild of the schema built from
// f. A nil f always requires one.
//
// Config and function digests must match. The snapshot is compared by
// pointer first and by classes digest second; when only the digest matches,
// f adopts next's snapshot so the following comparison is a pointer check.
func (f *Fingerprint) Changed(next *Fingerprint) bool {
	if f == nil || next == nil {
		return true
	}
	if f.ConfigDigest != next.ConfigDigest || f.FunctionsDigest != next.FunctionsDigest {
		return true
	}
	if f.Snapshot == next.Snapshot {
		return false
	}

	prev, err := f.ClassesDigest()
	if err != nil {
		return true
	}
	cur, err := next.ClassesDigest()
	if err != nil || prev != cur {
		return true
	}
	f.Snapshot = next.Snapshot
	return false
}
