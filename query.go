package quorum

import "fmt"

// Query modifiers, the part of an ABCI query path after "?".
const (
	// KeyQueryMod reads the model stored under exactly the given key.
	KeyQueryMod = ""
	// PrefixQueryMod reads every model whose key starts with the data.
	PrefixQueryMod = "prefix"
)

// QueryHandler answers the queries routed to one path.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister adds the query paths of one module.
type QueryRegister func(QueryRouter)

// QueryRouter maps query paths such as "/proposals" to their handlers.
// Copies share the same routes.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

func (r QueryRouter) RegisterAll(modules ...QueryRegister) {
	for _, register := range modules {
		register(r)
	}
}

// Register panics when path already has a handler.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("Re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler is nil for an unknown path.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
