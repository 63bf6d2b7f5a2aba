// Command autoschema prints and serves the GraphQL schema generated from a
// class snapshot.
package main

import "go.appointy.com/autoschema/cmd/autoschema/internal/command"

func main() {
	command.Execute()
}
