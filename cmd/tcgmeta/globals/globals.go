package globals

import (
	"context"

	"tcgmeta/cmd/tcgmeta/config"
	"tcgmeta/services/analysis"
)

type key struct{}

type Value struct {
	Config  config.Config
	Service analysis.Service
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
