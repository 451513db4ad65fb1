package tab

// HelperGlobal is the window property the helper script installs.
const HelperGlobal = "__pagepilot"

// HelperScript installs the in-page helper used by script-capable backends.
// It is a function expression so every backend can evaluate it the same way.
// Each helper method takes a single object argument.
const HelperScript = `() => {
  if (window.__pagepilot && window.__pagepilot.ready) return true;
  const controls = () => document.querySelectorAll("input, textarea, select");
  const buttons = () => document.querySelectorAll('button[type="submit"], input[type="submit"]');
  const forms = () => document.querySelectorAll("form");
  const at = (list, i) => {
    const el = list[i];
    if (!el) throw new Error("element " + i + " is gone");
    return el;
  };
  const fire = (el, type) => el.dispatchEvent(new Event(type, { bubbles: true }));
  window.__pagepilot = {
    ready: true,
    setText({ index, value }) {
      const el = at(controls(), index);
      el.focus();
      el.value = value;
      fire(el, "input");
      fire(el, "change");
      return true;
    },
    setChecked({ index, checked }) {
      const el = at(controls(), index);
      el.checked = checked;
      fire(el, "change");
      return true;
    },
    selectOption({ index, value, found }) {
      const el = at(controls(), index);
      if (found) el.value = value;
      fire(el, "change");
      return true;
    },
    submitVisible({ index }) {
      return at(buttons(), index).offsetParent !== null;
    },
    clickSubmit({ index }) {
      at(buttons(), index).click();
      return true;
    },
    dispatchSubmit({ index }) {
      const form = at(forms(), index);
      const evt = new Event("submit", { bubbles: true, cancelable: true });
      return !form.dispatchEvent(evt);
    },
    forceSubmit({ index }) {
      at(forms(), index).submit();
      return true;
    }
  };
  return true;
}`

// PingScript reports whether the helper is installed.
const PingScript = `() => !!(window.__pagepilot && window.__pagepilot.ready)`

// HelperCall returns a function expression invoking the named helper method
// with its single argument.
func HelperCall(method string) string {
	return "(arg) => window." + HelperGlobal + "." + method + "(arg)"
}

// HelperArgs is the argument object of a helper call.
type HelperArgs struct {
	Index   int
	Value   string
	Checked bool
	Found   bool
}

// Map returns the argument in the plain form script evaluators serialize.
func (a HelperArgs) Map() map[string]interface{} {
	return map[string]interface{}{
		"index":   a.Index,
		"value":   a.Value,
		"checked": a.Checked,
		"found":   a.Found,
	}
}
