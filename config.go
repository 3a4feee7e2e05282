package sigflow

import (
	"github.com/petrijr/sigflow/internal/config"
	"github.com/petrijr/sigflow/pkg/tools"
)

// LoadChain parses a declarative YAML chain definition, resolving tool
// references against reg (which may be nil when no tool handlers are used).
//
// Conditions and transforms in the configuration are written in a small,
// closed expression language evaluated against the signal and the state
// only; configuration never executes arbitrary code.
func LoadChain(data []byte, reg *tools.Registry) (Chain, error) {
	return config.NewLoader(reg).Load(data)
}

// LoadChainFile is LoadChain reading the definition from a file.
func LoadChainFile(path string, reg *tools.Registry) (Chain, error) {
	return config.NewLoader(reg).LoadFile(path)
}
