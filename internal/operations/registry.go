// Package operations is the catalog of named operations exposed to agent
// clients. Every call returns a Result; nothing escapes as an error or panic.
package operations

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// Handler runs an operation with its already validated arguments and
// returns the rendered text.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Operation is a named tool. Schema is a draft 2020-12 JSON Schema for the
// arguments object; Action completes the sentence "Error <action>: ...".
type Operation struct {
	Name        string
	Description string
	Kind        domain.OperationKind
	Action      string
	Schema      string
	Handler     Handler

	compiled *jsonschema.Schema
}

// Validate checks that an Operation can be registered.
func (op Operation) Validate() error {
	if op.Name == "" {
		return fmt.Errorf("operation name is required")
	}
	if op.Kind != domain.OperationQuery && op.Kind != domain.OperationCommand {
		return fmt.Errorf("operation %q: kind must be query or command, got %q", op.Name, op.Kind)
	}
	if op.Handler == nil {
		return fmt.Errorf("operation %q: handler is required", op.Name)
	}
	return nil
}

// OperationInfo describes an operation to clients
type OperationInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Kind        domain.OperationKind `json:"kind"`
	InputSchema json.RawMessage      `json:"inputSchema"`
}

// Recorder stores an audit entry per invocation. The postgres invocation
// repository satisfies it.
type Recorder interface {
	Record(ctx context.Context, inv *domain.Invocation) error
}

// Option configures a Registry
type Option func(*Registry)

// WithRecorder enables the invocation ledger
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		r.recorder = rec
	}
}

// Registry holds the operation, resource and prompt catalogs. It is built
// once at startup and only read afterwards, so it is safe for concurrent use.
type Registry struct {
	operations map[string]*Operation
	resources  []*Resource
	prompts    map[string]*Prompt
	recorder   Recorder
	logger     *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		operations: make(map[string]*Operation),
		prompts:    make(map[string]*Prompt),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const emptyObjectSchema = `{"type":"object","additionalProperties":false}`

// Ledger names for lookups that matched nothing. Caller-supplied names and
// URIs stay out of the ledger.
const (
	unknownOperation = "unknown-operation"
	unknownResource  = "unknown-resource"
	unknownPrompt    = "unknown-prompt"
)

// Register compiles the operation's schema and adds it to the catalog
func (r *Registry) Register(op Operation) error {
	if err := op.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}
	if _, exists := r.operations[op.Name]; exists {
		return fmt.Errorf("operation %q already registered", op.Name)
	}
	if op.Schema == "" {
		op.Schema = emptyObjectSchema
	}
	if op.Action == "" {
		op.Action = "running " + op.Name
	}

	compiled, err := compileSchema("operations/"+op.Name, op.Schema)
	if err != nil {
		return err
	}
	op.compiled = compiled

	r.operations[op.Name] = &op
	return nil
}

func compileSchema(name, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	schemaURL := fmt.Sprintf("https://schemas.shopgateway.local/%s.schema.json", name)
	if err := c.AddResource(schemaURL, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("schema load failed for %s: %w", name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed for %s: %w", name, err)
	}
	return compiled, nil
}

// Operations lists registered operations sorted by name
func (r *Registry) Operations() []OperationInfo {
	infos := make([]OperationInfo, 0, len(r.operations))
	for _, op := range r.operations {
		infos = append(infos, OperationInfo{
			Name:        op.Name,
			Description: op.Description,
			Kind:        op.Kind,
			InputSchema: json.RawMessage(op.Schema),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Invoke validates args against the operation's schema and runs it. Input
// that fails validation never reaches the handler.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (res Result) {
	start := time.Now()

	op, ok := r.operations[name]
	if !ok {
		err := &errors.ErrNotFound{Resource: "operation", ID: name}
		res = failureResult(name, "invoking "+name, err)
		r.finish(ctx, unknownOperation, "", res, start)
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Operation panicked",
				zap.String("operation", name),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			res = failureResult(name, op.Action, fmt.Errorf("internal error"))
		}
		r.finish(ctx, name, op.Kind, res, start)
	}()

	raw, err := normalizeArgs(args)
	if err != nil {
		return failureResult(name, op.Action, err)
	}
	if err := validateAgainst(op.compiled, raw); err != nil {
		return failureResult(name, op.Action, err)
	}

	text, err := op.Handler(ctx, raw)
	if err != nil {
		return failureResult(name, op.Action, err)
	}
	return textResult(name, text)
}

// normalizeArgs re-encodes caller arguments so schema validation and typed
// decoding both see plain JSON.
func normalizeArgs(args map[string]any) (json.RawMessage, error) {
	if args == nil {
		return json.RawMessage("{}"), nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, errors.NewValidation("", "arguments are not valid JSON: %v", err)
	}
	return raw, nil
}

func validateAgainst(schema *jsonschema.Schema, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		return errors.NewValidation("", "arguments are not valid JSON: %v", err)
	}

	err := schema.Validate(instance)
	if err == nil {
		return nil
	}

	var schemaErr *jsonschema.ValidationError
	if !stderrors.As(err, &schemaErr) {
		return errors.NewValidation("", "%v", err)
	}
	leaf := schemaErr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &errors.ValidationError{
		Field:   instanceField(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

// instanceField turns a JSON pointer such as /schedule/type into schedule.type
func instanceField(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	return strings.ReplaceAll(pointer, "/", ".")
}

// decodeArgs decodes validated arguments into a typed input
func decodeArgs(raw json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.NewValidation("", "failed to decode arguments: %v", err)
	}
	return nil
}

func (r *Registry) finish(ctx context.Context, name string, kind domain.OperationKind, res Result, start time.Time) {
	elapsed := time.Since(start)

	if res.IsError {
		r.logger.Warn("Operation failed",
			zap.String("operation", name),
			zap.String("kind", string(kind)),
			zap.String("error_kind", string(res.ErrorKind)),
			zap.Duration("elapsed", elapsed),
		)
	} else if kind.Mutates() {
		r.logger.Info("Operation completed",
			zap.String("operation", name),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", elapsed),
		)
	} else {
		r.logger.Debug("Operation completed",
			zap.String("operation", name),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", elapsed),
		)
	}

	if r.recorder == nil {
		return
	}

	inv := &domain.Invocation{
		ID:           uuid.New(),
		Operation:    name,
		Kind:         kind,
		IsError:      res.IsError,
		ErrorKind:    string(res.ErrorKind),
		DurationMs:   elapsed.Milliseconds(),
		GatewayKeyID: GatewayKeyIDFrom(ctx),
		CreatedAt:    time.Now(),
	}
	// Recording failures are logged only
	if err := r.recorder.Record(context.WithoutCancel(ctx), inv); err != nil {
		r.logger.Error("Failed to record invocation",
			zap.String("operation", name),
			zap.Error(err),
		)
	}
}

type gatewayKeyCtx struct{}

// WithGatewayKeyID attributes invocations made with ctx to a gateway key
func WithGatewayKeyID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, gatewayKeyCtx{}, id)
}

// GatewayKeyIDFrom returns the key set by WithGatewayKeyID, if any
func GatewayKeyIDFrom(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(gatewayKeyCtx{}).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
