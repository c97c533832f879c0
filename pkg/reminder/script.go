package reminder

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ClickCooldownMillis is how long clicks are ignored after a drag ends.
const ClickCooldownMillis = 150

const scriptPrelude = `(function () {
  'use strict';

  var config = window.reminderTabConfig;

  function openPopup(source) {
    document.dispatchEvent(new CustomEvent('openReminderPopup', { detail: { source: source } }));
  }
`

const desktopController = `
  class ReminderTab {
    constructor(element, config) {
      this.element = element;
      this.config = config;
      this.isDragging = false;
      this.clickBlockedUntil = 0;
      this.startY = 0;
      this.startTop = 0;
      this.lastX = 0;
      this.side = element.classList.contains('position-left') ? 'left' : 'right';
      this.bind();
    }

    bind() {
      var interactions = this.config.desktop.interactions;
      if (interactions.clicking.enabled) {
        this.element.addEventListener('click', (e) => this.handleClick(e));
        this.element.addEventListener('keydown', (e) => {
          if (e.key === 'Enter' || e.key === ' ') this.handleClick(e);
        });
      }
      if (interactions.dragging.enabled) {
        var handle = this.element.querySelector('.reminder-tab-dragger') || this.element;
        handle.addEventListener('mousedown', (e) => this.startDrag(e.clientX, e.clientY, e));
        handle.addEventListener('touchstart', (e) => {
          var t = e.touches[0];
          this.startDrag(t.clientX, t.clientY, e);
        }, { passive: false });
        document.addEventListener('mousemove', (e) => this.moveDrag(e.clientX, e.clientY, e));
        document.addEventListener('touchmove', (e) => {
          if (!this.isDragging) return;
          var t = e.touches[0];
          this.moveDrag(t.clientX, t.clientY, e);
        }, { passive: false });
        document.addEventListener('mouseup', (e) => this.endDrag(e.clientX));
        document.addEventListener('touchend', (e) => {
          var t = e.changedTouches && e.changedTouches[0];
          this.endDrag(t ? t.clientX : this.lastX);
        });
      }
    }

    isClickBlocked() {
      return this.isDragging || Date.now() < this.clickBlockedUntil;
    }

    handleClick(event) {
      if (this.isClickBlocked()) return;
      var target = event && event.target;
      if (target && target.closest && target.closest('.reminder-tab-dragger')) return;
      openPopup('desktop');
    }

    startDrag(x, y, event) {
      this.isDragging = true;
      this.startY = y;
      this.lastX = x;
      this.startTop = this.element.getBoundingClientRect().top;
      this.element.classList.add('dragging');
      if (event && event.preventDefault) event.preventDefault();
    }

    moveDrag(x, y, event) {
      if (!this.isDragging) return;
      this.lastX = x;
      var delta = y - this.startY;
      var maxTop = Math.max(0, window.innerHeight - this.element.offsetHeight);
      var top = Math.min(Math.max(0, this.startTop + delta), maxTop);
      this.element.style.top = top + 'px';
      this.element.style.transform = 'none';
      if (event && event.preventDefault) event.preventDefault();
    }

    endDrag(x) {
      if (!this.isDragging) return;
      this.isDragging = false;
      this.element.classList.remove('dragging');
      this.updateSide(typeof x === 'number' ? x : this.lastX);
      this.clickBlockedUntil = Date.now() + __COOLDOWN__;
    }

    updateSide(x) {
      var side = x > window.innerWidth / 2 ? 'right' : 'left';
      this.element.classList.remove('position-left', 'position-right');
      this.element.classList.add('position-' + side);
      this.side = side;
    }
  }
`

const mobileController = `
  class MobileFloatingButton {
    constructor(element, config) {
      this.element = element;
      this.config = config;
      this.element.addEventListener('click', () => openPopup('mobile'));
    }
  }
`

// GenerateJS returns the widget script (without the <script> wrapper). The
// ReminderTab and MobileFloatingButton controllers are only emitted when their
// device is visible. window.reminderTabConfig is always published.
func GenerateJS(cfg Config) string {
	var b strings.Builder

	data, err := json.Marshal(cfg)
	if err != nil {
		data = []byte("{}")
	}
	b.WriteString("window.reminderTabConfig = ")
	b.Write(data)
	b.WriteString(";\n")

	b.WriteString(scriptPrelude)
	if cfg.DesktopVisible() {
		b.WriteString(strings.Replace(desktopController, "__COOLDOWN__", strconv.Itoa(ClickCooldownMillis), 1))
	}
	if cfg.MobileVisible() {
		b.WriteString(mobileController)
	}

	b.WriteString("\n  function init() {\n")
	if cfg.DesktopVisible() {
		b.WriteString("    var tab = document.getElementById('reminderTab');\n")
		b.WriteString("    if (tab) window.reminderTab = new ReminderTab(tab, config);\n")
	}
	if cfg.MobileVisible() {
		b.WriteString("    var button = document.getElementById('mobileFloatingButton');\n")
		b.WriteString("    if (button) window.mobileFloatingButton = new MobileFloatingButton(button, config);\n")
	}
	b.WriteString(`  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', init);
  } else {
    init();
  }
})();
`)
	return b.String()
}
