package appkit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

// ErrorInfo bundles the response metadata registered for a class of errors: the HTTP status
// to respond with, the message template for the JSON body, and the severity at which the
// error is logged. Values are copied on registration and never mutated afterwards.
type ErrorInfo struct {
	Status  int
	Message string
	Level   zapcore.Level
}

// GenericErrorInfo is the fallback for errors no registration matches. Every error reachable
// from request handling resolves to it at worst, so the error responder can always produce
// a response.
var GenericErrorInfo = ErrorInfo{
	Status:  http.StatusInternalServerError,
	Message: "internal server error",
	Level:   zapcore.ErrorLevel,
}

type registryEntry struct {
	match func(error) bool
	info  ErrorInfo
}

// Registry maps error classes to [ErrorInfo]. Entries are an ordered list of predicates;
// Lookup evaluates them most-recently-registered first, so re-registering a class simply
// shadows the earlier entry. All registration must happen before serving begins: the
// registry is frozen at startup and treated as a read-only snapshot during traffic, which
// is why lookups need no locking.
type Registry struct {
	entries []registryEntry
	frozen  bool
}

// NewRegistry creates a registry pre-populated with the built-in classes: deadline
// expirations map to 504 and struct-validation failures to 422. Application registrations
// are evaluated before the built-ins.
func NewRegistry() *Registry {
	reg := &Registry{}

	reg.RegisterIs(context.DeadlineExceeded, ErrorInfo{
		Status:  http.StatusGatewayTimeout,
		Message: "request timeout",
		Level:   zapcore.ErrorLevel,
	})

	RegisterAs[validator.ValidationErrors](reg, ErrorInfo{
		Status:  http.StatusUnprocessableEntity,
		Message: "bad request",
		Level:   zapcore.WarnLevel,
	})

	return reg
}

// Register adds an entry matched by an arbitrary predicate. It panics when called after
// Freeze, mirroring the mux's Use-before-Handle discipline.
func (r *Registry) Register(match func(error) bool, info ErrorInfo) {
	r.ensureNotFrozen()
	r.entries = append(r.entries, registryEntry{match: match, info: info})
}

// RegisterIs adds an entry for errors matching target through errors.Is.
func (r *Registry) RegisterIs(target error, info ErrorInfo) {
	r.Register(func(err error) bool { return errors.Is(err, target) }, info)
}

// RegisterAs adds an entry for errors that unwrap to type E through errors.As.
func RegisterAs[E error](r *Registry, info ErrorInfo) {
	r.Register(func(err error) bool {
		var target E
		return errors.As(err, &target)
	}, info)
}

// Freeze marks the end of the registration phase. It is called by the app factory right
// before the server starts accepting connections.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Lookup resolves the [ErrorInfo] for err. Registered entries are evaluated latest-first;
// when none match, an [*Error] resolves to its own status code, and anything else to
// [GenericErrorInfo].
func (r *Registry) Lookup(err error) ErrorInfo {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].match(err) {
			return r.entries[i].info
		}
	}

	if kerr, ok := asError(err); ok {
		return infoForCode(kerr.Code())
	}

	return GenericErrorInfo
}

func (r *Registry) ensureNotFrozen() {
	if r.frozen {
		panic("appkit: cannot call Register after Freeze")
	}
}

// infoForCode derives response metadata from a status code error. Client errors log as
// warnings, server errors as errors.
func infoForCode(code Code) ErrorInfo {
	message := strings.ToLower(http.StatusText(int(code)))
	if message == "" {
		return GenericErrorInfo
	}

	level := zapcore.WarnLevel
	if int(code) >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}

	return ErrorInfo{Status: int(code), Message: message, Level: level}
}

var defaultRegistry struct {
	once sync.Once
	reg  *Registry
}

// Default returns the process-wide registry, built lazily on first use. Applications that
// do not pass their own registry to the app factory register their error classes here.
func Default() *Registry {
	defaultRegistry.once.Do(func() {
		defaultRegistry.reg = NewRegistry()
	})

	return defaultRegistry.reg
}
