package policy

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/callgraph"
)

// cycleObject converts a cycle to a Risor list of maps with keys routine,
// namespace, name, kind and type_args.
func cycleObject(cycle []callgraph.CallGraphNode) *object.List {
	items := make([]object.Object, len(cycle))
	for i, n := range cycle {
		items[i] = object.NewMap(map[string]object.Object{
			"routine":   object.NewString(n.Routine.String()),
			"namespace": object.NewString(n.Routine.Namespace),
			"name":      object.NewString(n.Routine.Name),
			"kind":      object.NewString(n.Kind.String()),
			"type_args": object.NewString(string(n.TypeArgs)),
		})
	}
	return object.NewList(items)
}

// makeReportFn returns the report(message) builtin.
func makeReportFn(reports *[]string) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("report", 1, len(args))
		}
		s, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("report: expected string, got %s", args[0].Type())
		}
		*reports = append(*reports, s.Value())
		return object.Nil
	})
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "policy")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "policy")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "policy")
}
