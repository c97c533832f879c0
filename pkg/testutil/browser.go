package testutil

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// Browser runs generated scripts in goja against a minimal DOM. It models
// only what the widget, merger and component scripts touch: element lookup
// by id and simple selectors, class lists, inline styles, event listeners
// with bubbling, CustomEvent, currentScript and manually flushed timers.
type Browser struct {
	t  testing.TB
	vm *goja.Runtime
}

// NewBrowser creates a browser with a 1000x800 viewport and an empty body.
func NewBrowser(t testing.TB) *Browser {
	t.Helper()
	b := &Browser{t: t, vm: goja.New()}
	if _, err := b.vm.RunString(domPrelude); err != nil {
		t.Fatalf("dom prelude: %v", err)
	}
	return b
}

// Load mounts the markup of an HTML document into the body, then runs its
// inline scripts in document order. While a body script runs,
// document.currentScript points at its mounted element.
func (b *Browser) Load(markup string) {
	b.t.Helper()
	doc := ParseHTML(b.t, markup)

	document := b.vm.Get("document").ToObject(b.vm)
	scripts := make(map[*html.Node]goja.Value)
	b.mount(document.Get("body"), doc.Find("body").Children(), scripts)

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		current, ok := scripts[s.Nodes[0]]
		if !ok {
			current = goja.Null()
		}
		b.setCurrentScript(document, current)
		b.Run(s.Text())
	})
	b.setCurrentScript(document, goja.Null())
}

func (b *Browser) setCurrentScript(document *goja.Object, v goja.Value) {
	if err := document.Set("currentScript", v); err != nil {
		b.t.Fatalf("set currentScript: %v", err)
	}
}

func (b *Browser) mount(parent goja.Value, sel *goquery.Selection, scripts map[*html.Node]goja.Value) {
	create, ok := goja.AssertFunction(b.vm.Get("__createElement"))
	if !ok {
		b.t.Fatalf("dom prelude: __createElement missing")
	}
	sel.Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if name == "style" {
			return
		}
		attrs := map[string]any{}
		for _, a := range s.Nodes[0].Attr {
			attrs[a.Key] = a.Val
		}
		el, err := create(goja.Undefined(), parent, b.vm.ToValue(name), b.vm.ToValue(attrs))
		if err != nil {
			b.t.Fatalf("create element %s: %v", name, err)
		}
		if name == "script" {
			scripts[s.Nodes[0]] = el
			return
		}
		b.mount(el, s.Children(), scripts)
	})
}

// Run executes script and returns its completion value.
func (b *Browser) Run(script string) goja.Value {
	b.t.Helper()
	v, err := b.vm.RunString(script)
	if err != nil {
		b.t.Fatalf("script error: %v", err)
	}
	return v
}

// Bool evaluates expr as a boolean.
func (b *Browser) Bool(expr string) bool {
	b.t.Helper()
	return b.Run(expr).ToBoolean()
}

// String evaluates expr as a string.
func (b *Browser) String(expr string) string {
	b.t.Helper()
	return b.Run(expr).String()
}

// SetNow fixes the value returned by Date.now.
func (b *Browser) SetNow(ms int64) {
	b.t.Helper()
	if err := b.vm.Set("__now", ms); err != nil {
		b.t.Fatalf("set clock: %v", err)
	}
}

// FlushTimers runs every pending setTimeout callback, including ones
// scheduled while flushing.
func (b *Browser) FlushTimers() {
	b.t.Helper()
	b.Run("__flushTimers()")
}

const domPrelude = `
var window = this;
window.innerWidth = 1000;
window.innerHeight = 800;
var console = { log: function () {}, warn: function () {}, error: function () {} };

var __now = 1000000;
Date.now = function () { return __now; };

var __timers = [];
function setTimeout(fn, ms) { __timers.push(fn); return __timers.length; }
function clearTimeout(id) { if (id > 0 && id <= __timers.length) __timers[id - 1] = null; }
var __intervals = [];
function setInterval(fn, ms) { __intervals.push(fn); return __intervals.length; }
function clearInterval(id) { if (id > 0 && id <= __intervals.length) __intervals[id - 1] = null; }
var navigator = {};
function __flushTimers() {
  for (var i = 0; i < __timers.length; i++) {
    var fn = __timers[i];
    __timers[i] = null;
    if (fn) fn();
  }
}

function CustomEvent(type, init) {
  this.type = type;
  this.detail = init ? init.detail : undefined;
}
function Event(type) { this.type = type; }

function ClassList(names) {
  this._names = [];
  var self = this;
  String(names || '').split(/\s+/).forEach(function (n) { if (n) self.add(n); });
}
ClassList.prototype.add = function () {
  for (var i = 0; i < arguments.length; i++) {
    if (this._names.indexOf(arguments[i]) < 0) this._names.push(arguments[i]);
  }
};
ClassList.prototype.remove = function () {
  for (var i = 0; i < arguments.length; i++) {
    var at = this._names.indexOf(arguments[i]);
    if (at >= 0) this._names.splice(at, 1);
  }
};
ClassList.prototype.contains = function (n) { return this._names.indexOf(n) >= 0; };
ClassList.prototype.toggle = function (n) {
  if (this.contains(n)) { this.remove(n); return false; }
  this.add(n);
  return true;
};
ClassList.prototype.toString = function () { return this._names.join(' '); };

function Node(tag, attrs) {
  attrs = attrs || {};
  this.tagName = String(tag).toUpperCase();
  this.attributes = attrs;
  this.id = attrs.id || '';
  this.classList = new ClassList(attrs['class']);
  this.style = {};
  this.children = [];
  this.parentNode = null;
  this.listeners = {};
  this.offsetHeight = 160;
  this.offsetWidth = 48;
  this.rectTop = 320;
}
Node.prototype.getAttribute = function (name) {
  return Object.prototype.hasOwnProperty.call(this.attributes, name) ? this.attributes[name] : null;
};
Node.prototype.setAttribute = function (name, value) {
  this.attributes[name] = String(value);
  if (name === 'id') this.id = String(value);
};
Node.prototype.appendChild = function (child) {
  child.parentNode = this;
  this.children.push(child);
  return child;
};
Node.prototype.remove = function () {
  if (!this.parentNode) return;
  var siblings = this.parentNode.children;
  siblings.splice(siblings.indexOf(this), 1);
  this.parentNode = null;
};
Node.prototype.contains = function (other) {
  for (var n = other; n; n = n.parentNode) if (n === this) return true;
  return false;
};
Node.prototype.addEventListener = function (type, fn) {
  (this.listeners[type] = this.listeners[type] || []).push(fn);
};
Node.prototype.removeEventListener = function (type, fn) {
  var list = this.listeners[type] || [];
  var at = list.indexOf(fn);
  if (at >= 0) list.splice(at, 1);
};
Node.prototype.dispatchEvent = function (event) {
  if (!event.target) event.target = this;
  event.stopped = false;
  if (!event.preventDefault) event.preventDefault = function () { event.defaultPrevented = true; };
  if (!event.stopPropagation) event.stopPropagation = function () { event.stopped = true; };
  for (var n = this; n; n = n.parentNode) {
    var list = (n.listeners[event.type] || []).slice();
    for (var i = 0; i < list.length; i++) list[i].call(n, event);
    if (event.stopped) break;
  }
  return !event.defaultPrevented;
};
Node.prototype.getBoundingClientRect = function () {
  var top = this.style.top ? parseFloat(this.style.top) : this.rectTop;
  return { top: top, left: 0, width: this.offsetWidth, height: this.offsetHeight, bottom: top + this.offsetHeight, right: this.offsetWidth };
};

function __matchSimple(el, sel) {
  if (!el || !el.classList) return false;
  var parts = sel.match(/[#.]?[^#.\[]+|\[[^\]]+\]/g) || [];
  for (var i = 0; i < parts.length; i++) {
    var p = parts[i];
    if (p.charAt(0) === '#') { if (el.id !== p.slice(1)) return false; }
    else if (p.charAt(0) === '.') { if (!el.classList.contains(p.slice(1))) return false; }
    else if (p.charAt(0) === '[') {
      var m = p.slice(1, -1).split('=');
      var v = el.getAttribute(m[0]);
      if (v === null) return false;
      if (m.length > 1 && v !== m[1].replace(/["']/g, '')) return false;
    }
    else if (p !== '*' && el.tagName !== p.toUpperCase()) return false;
  }
  return parts.length > 0;
}
function __matchChain(el, chain) {
  if (!__matchSimple(el, chain[chain.length - 1])) return false;
  if (chain.length === 1) return true;
  var rest = chain.slice(0, -1);
  for (var n = el.parentNode; n; n = n.parentNode) if (__matchChain(n, rest)) return true;
  return false;
}
Node.prototype.matches = function (selector) {
  var self = this;
  return String(selector).split(',').some(function (s) {
    var chain = s.trim().split(/\s+/);
    return chain[0] !== '' && __matchChain(self, chain);
  });
};
Node.prototype.closest = function (selector) {
  for (var n = this; n && n.matches; n = n.parentNode) if (n.matches(selector)) return n;
  return null;
};
Node.prototype.querySelectorAll = function (selector) {
  var out = [];
  (function walk(n) {
    for (var i = 0; i < n.children.length; i++) {
      var c = n.children[i];
      if (c.matches(selector)) out.push(c);
      walk(c);
    }
  })(this);
  return out;
};
Node.prototype.querySelector = function (selector) {
  return this.querySelectorAll(selector)[0] || null;
};

var document = new Node('#document');
document.readyState = 'complete';
document.currentScript = null;
document.documentElement = document.appendChild(new Node('html'));
document.body = document.documentElement.appendChild(new Node('body'));
document.getElementById = function (id) {
  var all = document.querySelectorAll('*');
  for (var i = 0; i < all.length; i++) if (all[i].id === id) return all[i];
  return null;
};
document.createElement = function (tag) { return new Node(tag); };
window.document = document;
window.listeners = {};
window.addEventListener = Node.prototype.addEventListener;
window.removeEventListener = Node.prototype.removeEventListener;
window.getComputedStyle = function (el) { return el.style; };

function __createElement(parent, tag, attrs) {
  var copy = {};
  for (var k in attrs) copy[k] = attrs[k];
  return parent.appendChild(new Node(tag, copy));
}

function fire(target, type, props) {
  var event = new Event(type);
  for (var k in (props || {})) event[k] = props[k];
  target.dispatchEvent(event);
  return event;
}
`
