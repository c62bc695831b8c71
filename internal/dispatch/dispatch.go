// Package dispatch defines the request/response boundary: named operations
// with declared argument specs, routed to the rule engine and rendered as
// human-readable text blocks. The same operation table drives the CLI and
// the MCP server, so both surfaces share one contract.
//
// Every call returns text. Validation failures and missing records come
// back as descriptive sentences, never as errors or empty strings; only an
// unexpected storage failure is surfaced verbatim, prefixed "Memory error:".
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/store"
)

// Argument types, matching the primitive types of the boundary contract.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// ArgSpec declares one named argument of an operation.
type ArgSpec struct {
	Name     string
	Type     string
	Desc     string
	Required bool
}

// Args is the flat argument map of one request. Values arrive as strings,
// numbers, or booleans depending on the transport; the getters coerce.
type Args map[string]interface{}

// String returns the named argument as a string.
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns the named argument as an int. JSON transports deliver numbers
// as float64; flag transports deliver strings.
func (a Args) Int(name string, fallback int) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Bool returns the named argument as a bool.
func (a Args) Bool(name string, fallback bool) bool {
	switch v := a[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Has reports whether the argument was supplied at all.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Operation is one named entry of the boundary contract.
type Operation struct {
	Name    string
	Desc    string
	Args    []ArgSpec
	Handler func(ctx context.Context, e *engine.Engine, args Args) (string, error)
}

// Dispatcher routes named operations to the engine. Cloud sync operations
// are registered only when the mirror capability is present.
type Dispatcher struct {
	eng   *engine.Engine
	log   *slog.Logger
	ops   map[string]Operation
	order []string
}

// New builds a Dispatcher over the engine.
func New(eng *engine.Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{eng: eng, log: logger, ops: make(map[string]Operation)}
	for _, op := range CoreOps() {
		d.register(op)
	}
	if eng.CloudEnabled() {
		for _, op := range SyncOps() {
			d.register(op)
		}
	}
	return d
}

func (d *Dispatcher) register(op Operation) {
	d.ops[op.Name] = op
	d.order = append(d.order, op.Name)
}

// Operations returns the registered operations in registration order.
func (d *Dispatcher) Operations() []Operation {
	out := make([]Operation, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.ops[name])
	}
	return out
}

// Call runs one operation and always returns text. No error ever crosses
// this boundary: validation failures become descriptive sentences, storage
// failures become "Memory error:" texts, and panics are recovered.
func (d *Dispatcher) Call(ctx context.Context, name string, args Args) (result string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("operation panicked", "op", name, "panic", r)
			result = fmt.Sprintf("Memory error: internal failure in %s", name)
		}
	}()

	op, ok := d.ops[name]
	if !ok {
		return fmt.Sprintf("Unknown operation: %s", name)
	}
	if msg := checkArgs(op, args); msg != "" {
		return msg
	}

	text, err := op.Handler(ctx, d.eng, args)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			return verr.Msg
		}
		d.log.Error("operation failed", "op", name, "error", err)
		return fmt.Sprintf("Memory error: %v", err)
	}
	return text
}

func checkArgs(op Operation, args Args) string {
	for _, spec := range op.Args {
		if !spec.Required {
			continue
		}
		if !args.Has(spec.Name) || (spec.Type == TypeString && args.String(spec.Name) == "") {
			return fmt.Sprintf("Missing required argument '%s' for %s", spec.Name, op.Name)
		}
	}
	return ""
}
