package main

import (
	"log"
	"net/http"

	"go.appointy.com/autoschema/example/blog"
	"go.appointy.com/autoschema/internal/logging"
)

func main() {
	h, err := blog.GetSchemaServer(logging.Default())
	if err != nil {
		log.Fatalf("Failed to build schema server: %v", err)
	}

	http.Handle("/", h)

	log.Println("Server running on :8080")
	log.Println("Schema: http://localhost:8080/schema.graphql")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal(err)
	}
}
