package datamodel

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema/internal/logging"
)

// ClassWithConfig pairs a class with its per-class override, if any.
type ClassWithConfig struct {
	Class  ClassDescriptor
	Config *ClassConfig
}

// FilterClasses applies the enable and disable lists of cfg. When neither
// list is set every class is returned. A class present in both lists is
// excluded. usersEnabled reports whether the users class survived.
func FilterClasses(classes []ClassDescriptor, cfg *SchemaConfig) (included []ClassDescriptor, usersEnabled bool) {
	included = classes
	if cfg != nil && (cfg.EnabledForClasses != nil || cfg.DisabledForClasses != nil) {
		if cfg.EnabledForClasses != nil {
			included = keep(included, *cfg.EnabledForClasses, true)
		}
		if cfg.DisabledForClasses != nil {
			included = keep(included, *cfg.DisabledForClasses, false)
		}
	}

	for _, c := range included {
		if c.ClassName == UsersClass {
			usersEnabled = true
			break
		}
	}
	return included, usersEnabled
}

func keep(classes []ClassDescriptor, names []string, member bool) []ClassDescriptor {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	out := make([]ClassDescriptor, 0, len(classes))
	for _, c := range classes {
		if _, ok := set[c.ClassName]; ok == member {
			out = append(out, c)
		}
	}
	return out
}

// SortClasses returns a copy of classes with system classes (leading
// underscore) first, each group in lexical order.
func SortClasses(classes []ClassDescriptor) []ClassDescriptor {
	sorted := append([]ClassDescriptor(nil), classes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ClassName, sorted[j].ClassName
		as, bs := isSystemClass(a), isSystemClass(b)
		if as != bs {
			return as
		}
		return a < b
	})
	return sorted
}

func isSystemClass(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

// ClassesWithConfig sorts classes for generation and attaches the first
// class config with a matching class name.
func ClassesWithConfig(classes []ClassDescriptor, cfg *SchemaConfig) []ClassWithConfig {
	sorted := SortClasses(classes)
	out := make([]ClassWithConfig, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, ClassWithConfig{Class: c, Config: classConfig(cfg, c.ClassName)})
	}
	return out
}

func classConfig(cfg *SchemaConfig, className string) *ClassConfig {
	if cfg == nil {
		return nil
	}
	for i := range cfg.ClassConfigs {
		if cfg.ClassConfigs[i].ClassName == className {
			return &cfg.ClassConfigs[i]
		}
	}
	return nil
}

var functionNamePattern = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// ValidFunctionNames drops function names that are not valid GraphQL names,
// logging a warning for each.
func ValidFunctionNames(names []string, log logr.Logger) []string {
	valid := make([]string, 0, len(names))
	for _, name := range names {
		if functionNamePattern.MatchString(name) {
			valid = append(valid, name)
			continue
		}
		logging.Warn(log, fmt.Sprintf("Function %s could not be added to the auto schema because GraphQL names must match /^[_a-zA-Z][_a-zA-Z0-9]*$/.", name))
	}
	return valid
}
