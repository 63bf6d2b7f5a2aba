package schemabuilder

import (
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
)

// Custom scalars of the generated schema. Each build registers these exact
// instances.
var (
	Date = &graphql.Scalar{
		Type:           "Date",
		Description:    "The Date scalar type is used in operations and types that involve dates.",
		SpecifiedByURL: "https://www.rfc-editor.org/rfc/rfc3339",
	}
	File = &graphql.Scalar{
		Type:        "File",
		Description: "The File scalar type is used in operations and types that involve files.",
	}
	Bytes = &graphql.Scalar{
		Type:        "Bytes",
		Description: "The Bytes scalar type is used in operations and types that involve base 64 binary data.",
	}
	Any = &graphql.Scalar{
		Type:        "Any",
		Description: "The Any scalar type is used in operations and types that involve any type of value.",
	}
	Object = &graphql.Scalar{
		Type:        "Object",
		Description: "The Object scalar type is used in operations and types that involve objects.",
	}
	GeoPoint = &graphql.Scalar{
		Type:        "GeoPoint",
		Description: "The GeoPoint scalar type is used in operations and types that involve geo points.",
	}
	Polygon = &graphql.Scalar{
		Type:        "Polygon",
		Description: "The Polygon scalar type is used in operations and types that involve polygons.",
	}
	ACL = &graphql.Scalar{
		Type:        "ACL",
		Description: "The ACL scalar type is used in operations and types that involve access control lists.",
	}
)

var defaultScalars = []*graphql.Scalar{Date, File, Bytes, Any, Object, GeoPoint, Polygon, ACL}

// Fields every class object carries, in addition to the class fields.
const (
	fieldID        = "id"
	fieldObjectID  = "objectId"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
	fieldACL       = "ACL"
)

func isDefaultField(name string) bool {
	switch name {
	case fieldID, fieldObjectID, fieldCreatedAt, fieldUpdatedAt, fieldACL:
		return true
	}
	return false
}

// scalarFor maps a class field type to the scalar it is exposed as, both in
// output objects and in input objects. Pointer and Relation fields are
// handled by the callers.
func scalarFor(fieldType string) (graphql.Type, bool) {
	switch fieldType {
	case datamodel.TypeString:
		return graphql.String, true
	case datamodel.TypeNumber:
		return graphql.Float, true
	case datamodel.TypeBoolean:
		return graphql.Boolean, true
	case datamodel.TypeDate:
		return Date, true
	case datamodel.TypeObject:
		return Object, true
	case datamodel.TypeArray:
		return &graphql.List{Type: Any}, true
	case datamodel.TypeFile:
		return File, true
	case datamodel.TypeGeoPoint:
		return GeoPoint, true
	case datamodel.TypePolygon:
		return Polygon, true
	case datamodel.TypeBytes:
		return Bytes, true
	case datamodel.TypeACL:
		return ACL, true
	default:
		return nil, false
	}
}

func nonNull(t graphql.Type) graphql.Type {
	return &graphql.NonNull{Type: t}
}

func listOf(t graphql.Type) graphql.Type {
	return &graphql.List{Type: t}
}

// clientMutationID is carried by every mutation input and payload.
func clientMutationID() *graphql.Field {
	return &graphql.Field{Type: graphql.String}
}
