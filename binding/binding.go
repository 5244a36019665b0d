package binding

import (
	"github.com/hhkbp2/txbench"
)

var (
	// bindings that need a build tag add themselves here
	extraBindings = map[string]txbench.MakeStoreFunc{}
)

func AddBindings() {
	txbench.Stores["sqlite"] = func() txbench.Store {
		return NewSqliteStore()
	}
	txbench.Stores["mysql"] = func() txbench.Store {
		return NewMysqlStore()
	}
	txbench.Stores["postgres"] = func() txbench.Store {
		return NewPostgresStore()
	}
	for name, f := range extraBindings {
		txbench.Stores[name] = f
	}
}
