package schemabuilder

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

// graphQLClassName converts a class name into the name of its object type:
// a leading underscore is dropped and the first rune is upper-cased, so
// "_User" becomes "User".
func graphQLClassName(className string) string {
	name := strings.TrimPrefix(className, "_")
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// fieldName converts a type name into a field name, "GameScore" into
// "gameScore".
func fieldName(typeName string) string {
	return strcase.ToLowerCamel(typeName)
}

var inflector = pluralize.NewClient()

// pluralName returns the English plural of a camel-cased name, "gameScore"
// into "gameScores" and "person" into "people".
func pluralName(name string) string {
	return inflector.Plural(name)
}

func edgeName(typeName string) string {
	return typeName + "Edge"
}

func connectionName(typeName string) string {
	return typeName + "Connection"
}
