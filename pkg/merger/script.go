package merger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AutoOpenDelayMillis is the delay before an auto-opened popup is shown.
const AutoOpenDelayMillis = 100

const connectionScript = `(function () {
  'use strict';

  var TRIGGER_TYPES = ['modal', 'slide', 'fade', 'zoom'];

  var popup = null;
  var main = null;
  var triggers = [];
  var open = false;
  var hideTimer = null;
  var shownAt = 0;

  function triggerType() {
    var cfg = (window.reminderTab && window.reminderTab.config) || window.reminderTabConfig;
    var type = cfg && cfg.animations && cfg.animations.popupTrigger && cfg.animations.popupTrigger.type;
    return TRIGGER_TYPES.indexOf(type) >= 0 ? type : 'modal';
  }

  function clearTriggerClasses() {
    TRIGGER_TYPES.forEach(function (t) { popup.classList.remove('trigger-' + t); });
  }

  function show() {
    if (!popup || open) return;
    if (hideTimer) {
      clearTimeout(hideTimer);
      hideTimer = null;
    }
    clearTriggerClasses();
    popup.style.display = 'flex';
    void popup.offsetHeight;
    popup.classList.add('trigger-' + triggerType());
    popup.classList.add('active');
    open = true;
    shownAt = Date.now();
  }

  function hide() {
    if (!popup || !open) return;
    popup.classList.remove('active');
    open = false;
    hideTimer = setTimeout(function () {
      hideTimer = null;
      popup.style.display = 'none';
      clearTriggerClasses();
    }, DURATION_MS);
  }

  function toggle() {
    if (open) hide(); else show();
  }

  function isOpen() {
    return open;
  }

  function onTriggerClick(event) {
    var target = event && event.target;
    if (target && target.closest && target.closest('.reminder-tab-dragger, [data-drag-handle]')) return;
    if (window.reminderTab && typeof window.reminderTab.isClickBlocked === 'function' && window.reminderTab.isClickBlocked()) return;
    show();
  }

  function bindOnce(el, key, type, fn) {
    if (el[key]) return;
    el[key] = true;
    el.addEventListener(type, fn);
  }

  function refresh() {
    popup = document.querySelector(POPUP_SELECTOR);
    main = popup ? (popup.querySelector('.u-popup-main') || popup) : null;
    triggers = document.querySelectorAll(TRIGGER_SELECTOR);
    for (var i = 0; i < triggers.length; i++) {
      bindOnce(triggers[i], '__popupMergerTrigger', 'click', onTriggerClick);
    }
    if (DISABLE_CLOSE) return;
    CLOSE_SELECTORS.forEach(function (selector) {
      var closers = document.querySelectorAll(selector);
      for (var i = 0; i < closers.length; i++) {
        (function (el) {
          bindOnce(el, '__popupMergerClose', 'click', function (event) {
            if (main && el.contains(main) && event.target !== el) return;
            hide();
          });
        })(closers[i]);
      }
    });
  }

  function isInsideTrigger(target) {
    for (var i = 0; i < triggers.length; i++) {
      if (triggers[i].contains(target)) return true;
    }
    return false;
  }

  function init() {
    refresh();
    if (!popup) return;

    document.addEventListener('keydown', function (event) {
      if (event.key === 'Escape') hide();
    });
    document.addEventListener('click', function (event) {
      if (!open || Date.now() - shownAt < 50) return;
      var target = event.target;
      if (!target || (main && main.contains(target)) || isInsideTrigger(target)) return;
      hide();
    });

    if (AUTO_OPEN) setTimeout(show, AUTO_OPEN_DELAY_MS);
  }

  document.addEventListener('openReminderPopup', function () { show(); });
  document.addEventListener('closeReminderPopup', function () { hide(); });

  window.popupMerger = { show: show, hide: hide, toggle: toggle, refresh: refresh, isOpen: isOpen };

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', init);
  } else {
    init();
  }
})();
`

// connectionJS returns the script that wires the widget triggers to the
// popup for opts.
func connectionJS(opts Options, durationMs int64) string {
	if !opts.Animated() {
		durationMs = 0
	}
	consts := map[string]any{
		"POPUP_SELECTOR":     opts.PopupSelector,
		"TRIGGER_SELECTOR":   opts.TriggerSelector,
		"CLOSE_SELECTORS":    opts.CloseSelectors,
		"DURATION_MS":        durationMs,
		"AUTO_OPEN":          opts.AutoOpenPopup,
		"AUTO_OPEN_DELAY_MS": AutoOpenDelayMillis,
		"DISABLE_CLOSE":      opts.DisableCloseButtons,
	}
	names := []string{"POPUP_SELECTOR", "TRIGGER_SELECTOR", "CLOSE_SELECTORS", "DURATION_MS", "AUTO_OPEN", "AUTO_OPEN_DELAY_MS", "DISABLE_CLOSE"}

	var b strings.Builder
	b.WriteString("var ")
	for i, name := range names {
		v, err := json.Marshal(consts[name])
		if err != nil {
			v = []byte("null")
		}
		if i > 0 {
			b.WriteString(",\n    ")
		}
		fmt.Fprintf(&b, "%s = %s", name, v)
	}
	b.WriteString(";\n")

	return strings.Replace(connectionScript, "'use strict';\n", "'use strict';\n  "+b.String(), 1)
}
