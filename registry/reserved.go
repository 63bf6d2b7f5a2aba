package registry

import "strings"

// ConnectionSuffix ends the names of cursor-based list types. Only the
// connection generators may register such names.
const ConnectionSuffix = "Connection"

var reservedTypeNames = setOf(
	"String",
	"Boolean",
	"Int",
	"Float",
	"ID",
	"ArrayResult",
	"Query",
	"Mutation",
	"Subscription",
	"CreateFileInput",
	"CreateFilePayload",
	"Viewer",
	"SignUpInput",
	"SignUpPayload",
	"LogInInput",
	"LogInPayload",
	"LogOutInput",
	"LogOutPayload",
	"CloudCodeFunction",
	"CallCloudCodeInput",
	"CallCloudCodePayload",
	"CreateClassInput",
	"CreateClassPayload",
	"UpdateClassInput",
	"UpdateClassPayload",
	"DeleteClassInput",
	"DeleteClassPayload",
	"PageInfo",
)

var reservedQueryNames = setOf("health", "viewer", "class", "classes")

var reservedMutationNames = setOf(
	"signUp",
	"logIn",
	"logOut",
	"createFile",
	"callCloudCode",
	"createClass",
	"updateClass",
	"deleteClass",
)

func setOf(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsReservedType reports whether name belongs to the protocol or to the
// fixed default schema. Introspection names count as reserved.
func IsReservedType(name string) bool {
	if strings.HasPrefix(name, "__") {
		return true
	}
	_, ok := reservedTypeNames[name]
	return ok
}

// IsReservedQuery reports whether name is a built-in query field.
func IsReservedQuery(name string) bool {
	_, ok := reservedQueryNames[name]
	return ok
}

// IsReservedMutation reports whether name is a built-in mutation field.
func IsReservedMutation(name string) bool {
	_, ok := reservedMutationNames[name]
	return ok
}
