package datamodel

import (
	"context"
	"fmt"

	"go.appointy.com/autoschema/jerrors"
	"gocloud.dev/runtimevar"
	_ "gocloud.dev/runtimevar/constantvar" // constant:// variables
	_ "gocloud.dev/runtimevar/filevar"     // file:// variables
	"google.golang.org/grpc/codes"
)

// ConfigDecoder decodes runtimevar payloads written as JSON or YAML into a
// SchemaConfig.
var ConfigDecoder = runtimevar.NewDecoder(SchemaConfig{}, decode)

// VariableConfigProvider serves the latest value of a gocloud runtimevar as
// the schema configuration.
type VariableConfigProvider struct {
	v *runtimevar.Variable
}

// NewVariableConfigProvider wraps v. The caller keeps ownership of v.
func NewVariableConfigProvider(v *runtimevar.Variable) *VariableConfigProvider {
	return &VariableConfigProvider{v: v}
}

// OpenVariableConfigProvider opens the variable at url, for example
// "file:///etc/autoschema/config.yaml?decoder=bytes".
func OpenVariableConfigProvider(ctx context.Context, url string) (*VariableConfigProvider, error) {
	v, err := runtimevar.OpenVariable(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewVariableConfigProvider(v), nil
}

func (p *VariableConfigProvider) Config(ctx context.Context) (*SchemaConfig, error) {
	snap, err := p.v.Latest(ctx)
	if err != nil {
		return nil, jerrors.WrapDataError(codes.Unavailable, err, "reading schema config")
	}
	cfg, err := configFromValue(snap.Value)
	if err != nil {
		return nil, jerrors.WrapDataError(codes.InvalidArgument, err, "invalid schema config")
	}
	return cfg, nil
}

// Close closes the underlying variable.
func (p *VariableConfigProvider) Close() error {
	return p.v.Close()
}

// configFromValue accepts whatever the variable's decoder produced.
func configFromValue(v interface{}) (*SchemaConfig, error) {
	switch v := v.(type) {
	case SchemaConfig:
		return &v, nil
	case *SchemaConfig:
		c := *v
		return &c, nil
	case []byte:
		return DecodeConfig(v)
	case string:
		return DecodeConfig([]byte(v))
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return DecodeConfig(data)
	default:
		return nil, fmt.Errorf("unsupported config value %T", v)
	}
}
