package datamodel

import (
	"bytes"
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeSnapshot reads a snapshot document written as JSON or YAML:
//
//	classes:
//	  - className: Post
//	    fields:
//	      title: {type: String}
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := decode(context.Background(), data, &snap); err != nil {
		return nil, fmt.Errorf("decoding class snapshot: %w", err)
	}
	return &snap, nil
}

// DecodeConfig reads a SchemaConfig written as JSON or YAML.
func DecodeConfig(data []byte) (*SchemaConfig, error) {
	var cfg SchemaConfig
	if err := decode(context.Background(), data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding schema config: %w", err)
	}
	return &cfg, nil
}

// decode has the runtimevar.Decode signature so it can back a runtimevar
// decoder directly.
func decode(_ context.Context, data []byte, obj interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return json.Unmarshal(trimmed, obj)
	}
	return yaml.Unmarshal(trimmed, obj)
}
