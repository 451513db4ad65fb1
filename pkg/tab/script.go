package tab

import (
	"context"
	"fmt"
)

// Evaluator runs a function expression in the tab's page context and
// returns its JSON-compatible result. A nil arg calls the function without
// arguments.
type Evaluator interface {
	Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error)
}

// ScriptDriver implements the helper-related half of Conn on top of an
// Evaluator. Backends that can run page scripts embed it.
type ScriptDriver struct {
	eval Evaluator
}

// NewScriptDriver creates a driver that calls the helper through eval.
func NewScriptDriver(eval Evaluator) *ScriptDriver {
	return &ScriptDriver{eval: eval}
}

// Ping reports whether the helper is installed.
func (d *ScriptDriver) Ping(ctx context.Context) (bool, error) {
	v, err := d.eval.Evaluate(ctx, PingScript, nil)
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

// Inject installs the helper.
func (d *ScriptDriver) Inject(ctx context.Context) error {
	if _, err := d.eval.Evaluate(ctx, HelperScript, nil); err != nil {
		return fmt.Errorf("failed to inject helper: %w", err)
	}
	return nil
}

func (d *ScriptDriver) call(ctx context.Context, method string, args HelperArgs) (interface{}, error) {
	v, err := d.eval.Evaluate(ctx, HelperCall(method), args.Map())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return v, nil
}

func (d *ScriptDriver) callBool(ctx context.Context, method string, args HelperArgs) (bool, error) {
	v, err := d.call(ctx, method, args)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected result %v", method, v)
	}
	return b, nil
}

func (d *ScriptDriver) SetText(ctx context.Context, control int, value string) error {
	_, err := d.call(ctx, "setText", HelperArgs{Index: control, Value: value})
	return err
}

func (d *ScriptDriver) SetChecked(ctx context.Context, control int, checked bool) error {
	_, err := d.call(ctx, "setChecked", HelperArgs{Index: control, Checked: checked})
	return err
}

func (d *ScriptDriver) SelectOption(ctx context.Context, control int, value string, found bool) error {
	_, err := d.call(ctx, "selectOption", HelperArgs{Index: control, Value: value, Found: found})
	return err
}

func (d *ScriptDriver) SubmitVisible(ctx context.Context, button int) (bool, error) {
	return d.callBool(ctx, "submitVisible", HelperArgs{Index: button})
}

func (d *ScriptDriver) ClickSubmit(ctx context.Context, button int) error {
	_, err := d.call(ctx, "clickSubmit", HelperArgs{Index: button})
	return err
}

func (d *ScriptDriver) DispatchSubmit(ctx context.Context, form int) (bool, error) {
	return d.callBool(ctx, "dispatchSubmit", HelperArgs{Index: form})
}

func (d *ScriptDriver) ForceSubmit(ctx context.Context, form int) error {
	_, err := d.call(ctx, "forceSubmit", HelperArgs{Index: form})
	return err
}
