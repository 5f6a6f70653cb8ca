package recelim

import (
	"fmt"

	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
)

// FindRecords lists every place in e that still mentions records: make-record and
// record-ref nodes, and any type held by a node that contains a record type.
// It is empty for the output of Eliminate.
func FindRecords(e typed.Expr) []string {
	var found []string
	typed.Walk(e, func(e typed.Expr) bool {
		switch e := e.(type) {
		case *typed.MakeRecord:
			found = append(found, fmt.Sprintf("%s: make-record", e.Describe()))
		case *typed.RecordRef:
			found = append(found, fmt.Sprintf("%s: record-ref of %s", e.Describe(), e.Field))
		}
		for _, t := range typed.Annotations(e) {
			if t != nil && hasRecord(t) {
				found = append(found, fmt.Sprintf("%s: type %s", e.Describe(), t))
			}
		}
		return true
	})
	return found
}

func hasRecord(t types.Type) bool {
	found := false
	types.Transform(t, func(t types.Type) types.Type {
		if _, ok := t.(types.Record); ok {
			found = true
		}
		return t
	})
	return found
}
