package utils

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"go.uber.org/zap"
)

// RecoverFn is a function that handles a recovered panic
type RecoverFn func(r interface{}, stack []byte)

// SafeGo executes the given function in a goroutine with panic recovery
func SafeGo(fn func(), onPanic RecoverFn) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				if onPanic != nil {
					onPanic(r, stack)
					return
				}
				if logger.Log != nil {
					logger.Log.Error("[panic] Recovered from panic in goroutine",
						zap.Any("panic", r),
						zap.ByteString("stack", stack),
					)
				} else {
					fmt.Fprintf(os.Stderr, "[PANIC] Recovered from panic in goroutine: %v\n%s\n", r, stack)
				}
			}
		}()
		fn()
	}()
}

// WrapWithContextRecovery wraps a function that takes a context with panic recovery.
// A recovered panic is returned as an error.
func WrapWithContextRecovery(operation string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				if log := logger.FromContext(ctx); log != nil {
					log.Error(fmt.Sprintf("[panic] Recovered from panic during %s", operation),
						zap.Any("panic", r),
						zap.ByteString("stack", stack),
					)
				} else {
					fmt.Fprintf(os.Stderr, "[PANIC] Recovered from panic during %s: %v\n%s\n", operation, r, stack)
				}
				err = fmt.Errorf("panic recovered during %s: %v", operation, r)
			}
		}()
		return fn(ctx)
	}
}
