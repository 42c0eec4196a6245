package registry

import (
	"sort"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/docs"
	"github.com/mphost/mph/pkg/mount"
	"github.com/mphost/mph/pkg/static"
)

// builtin maps descriptor types to the backends compiled into the host.
var builtin = map[string]backend.Factory{
	mount.Type:         mount.New,
	docs.Document.Type: docs.New(docs.Document),
	docs.Records.Type:  docs.New(docs.Records),
	static.Type:        static.New,
}

// Types lists the built-in descriptor types, sorted.
func Types() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// factoryFor picks the factory of a descriptor: an explicit implementation
// wins over the type table.
func factoryFor(implementation, typ string) (backend.Factory, string, error) {
	if implementation != "" {
		f, err := backend.LookupImplementation(implementation)
		if err != nil {
			return nil, ReasonUnknownImplementation, err
		}
		return f, "", nil
	}
	f, ok := builtin[typ]
	if !ok {
		return nil, ReasonUnknownType, ErrUnknownType
	}
	return f, "", nil
}
