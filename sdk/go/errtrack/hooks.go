package errtrack

import (
	"errors"
	"fmt"
)

// FatalHookRegistrar is the capability through which a host environment
// exposes its process-level fatal conditions to the client. Injecting it
// keeps the client testable with a fake registrar and keeps the client out
// of implicit global process state.
type FatalHookRegistrar interface {
	// OnUncaughtException registers a handler for exceptions nothing else
	// caught. The process will not survive these.
	OnUncaughtException(handler func(err error))
	// OnUnhandledRejection registers a handler for asynchronous failures
	// with no observer. The process survives these.
	OnUnhandledRejection(handler func(reason any))
}

// installFatalHooks wires the two process-boundary handlers. An uncaught
// exception is captured at fatal severity and the process exits with
// code 1. An unhandled rejection is captured at error severity without
// terminating; non-error reasons are stringified into a synthetic error.
func (c *Client) installFatalHooks(reg FatalHookRegistrar) {
	reg.OnUncaughtException(func(err error) {
		c.CaptureException(err, &CaptureContext{
			Level: LevelFatal,
			Tags:  map[string]string{"handled": "false"},
		})
		c.Flush(0)
		c.exit(1)
	})

	reg.OnUnhandledRejection(func(reason any) {
		err, ok := reason.(error)
		if !ok {
			err = errors.New(fmt.Sprint(reason))
		}
		c.CaptureException(err, &CaptureContext{
			Level: LevelError,
			Tags:  map[string]string{"handled": "false", "type": "unhandledRejection"},
		})
	})
}
