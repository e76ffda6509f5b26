package directivecmd

import "errors"

// CommandRegistry records command handlers so hosts can expose them.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions selects where handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the handlers and dispatcher subscriptions.
type RegistrationResult struct {
	Format  *FormatHandler
	Render  *RenderHandler
	Inspect *InspectHandler
	Check   *CheckHandler

	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterHandlers builds the directive handlers for ws and registers each
// with the optional registry and dispatcher. Registration errors are joined;
// handlers are returned even when some registrations fail.
func RegisterHandlers(ws *Workspace, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{
		Format:  NewFormatHandler(ws),
		Render:  NewRenderHandler(ws),
		Inspect: NewInspectHandler(ws),
		Check:   NewCheckHandler(ws),
	}

	var errs error
	for _, handler := range []any{result.Format, result.Render, result.Inspect, result.Check} {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}
	return result, errs
}
