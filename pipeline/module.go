package pipeline

import (
	"context"
	"time"

	Logger "github.com/sociolens/sociolens/utils/log"
)

const GracefulRetryDelay = 3

// RunModuleWithGracefulRestart keeps a module alive: a module returning an
// error is restarted after a small delay, a clean return ends it. Per-rule
// and per-post failures never bubble up this far, only unrecoverable
// resource failures do, and those deserve a retry rather than a crash loop.
func RunModuleWithGracefulRestart(ctx context.Context, module *Module) {
	for {
		err := (*module).RunModule(ctx)
		if err == nil {
			break
		}
		Logger.Log.Errorf(
			"Module %s exited with error %v, retry in %d seconds",
			(*module).Name(),
			err,
			GracefulRetryDelay)

		// Wait for a small amount of time and restart.
		time.Sleep(GracefulRetryDelay * time.Second)
	}
}

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance. Note
	// that if there are multiple instances of the same module, each instance
	// should have a unique name instead of using the same name.
	Name() string

	// Shutdown performs module specific cleanup on engine shutdown.
	Shutdown()
}
