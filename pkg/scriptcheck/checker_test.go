package scriptcheck

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/popupkit/pkg/reminder"
)

func newTestChecker(t *testing.T, size int) *Checker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	c := NewChecker(size, logger)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCheck_Valid(t *testing.T) {
	c := newTestChecker(t, 2)

	issues, err := c.Check(`class A { constructor() { this.x = () => 1; } }
window.a = new A();`)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheck_SyntaxError(t *testing.T) {
	c := newTestChecker(t, 2)

	issues, err := c.Check("var ok = 1;\nfunction broken( {\n  return 1;\n")
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.GreaterOrEqual(t, issues[0].Line, 1)
	assert.Contains(t, []string{"error", "missing"}, issues[0].Kind)
	assert.NotEmpty(t, issues[0].String())
}

func TestCheck_GeneratedWidgetScripts(t *testing.T) {
	c := newTestChecker(t, 2)

	for name, mutate := range map[string]func(*reminder.Config){
		"default":    func(*reminder.Config) {},
		"no mobile":  func(cfg *reminder.Config) { cfg.Mobile.Enabled = false },
		"no desktop": func(cfg *reminder.Config) { cfg.Desktop.Enabled = false },
		"disabled":   func(cfg *reminder.Config) { cfg.Enabled = false },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := reminder.DefaultConfig()
			mutate(&cfg)
			issues, err := c.Check(reminder.GenerateJS(cfg))
			require.NoError(t, err)
			assert.Empty(t, issues)
		})
	}
}

func TestClasses(t *testing.T) {
	c := newTestChecker(t, 2)

	cfg := reminder.DefaultConfig()
	names, err := c.Classes(reminder.GenerateJS(cfg))
	require.NoError(t, err)
	assert.Equal(t, []string{"MobileFloatingButton", "ReminderTab"}, names)

	cfg.Mobile.Enabled = false
	names, err = c.Classes(reminder.GenerateJS(cfg))
	require.NoError(t, err)
	assert.Equal(t, []string{"ReminderTab"}, names)

	names, err = c.Classes("var x = 1;")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestChecker_Concurrent(t *testing.T) {
	c := newTestChecker(t, 4)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Check("const x = 1;"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("check failed: %v", err)
	}

	stats := c.Stats()
	assert.Equal(t, int64(n), stats.ChecksRun)
	assert.LessOrEqual(t, stats.ParsersCreated, 4)
}

func TestChecker_CloseTwice(t *testing.T) {
	c := NewChecker(1, nil)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestCheckSource_TypeScript(t *testing.T) {
	c := newTestChecker(t, 1)

	src := `interface Coupon { code: string }
abstract class Base { abstract open(): void }
class Tab extends Base implements Coupon { code = "SAVE10"; open(): void {} }`

	issues, err := c.CheckSource(TypeScript, src)
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Type annotations are not JavaScript.
	issues, err = c.CheckSource(JavaScript, "let code: string = 'x';")
	require.NoError(t, err)
	assert.NotEmpty(t, issues)

	names, err := c.ClassesSource(TypeScript, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base", "Tab"}, names)

	assert.Equal(t, 2, c.Stats().ParsersCreated, "one parser per language")
}

func TestCheckSource_UnsupportedLanguage(t *testing.T) {
	c := newTestChecker(t, 1)
	_, err := c.CheckSource(Language("coffee"), "x = 1")
	assert.Error(t, err)
}

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		in     string
		byPath bool
		want   Language
		ok     bool
	}{
		{"widget.js", true, JavaScript, true},
		{"widget.MJS", true, JavaScript, true},
		{"widget.ts", true, TypeScript, true},
		{"widget.html", true, "", false},
		{"", false, JavaScript, true},
		{"module", false, JavaScript, true},
		{"text/typescript", false, TypeScript, true},
		{"application/ld+json", false, "", false},
	}
	for _, tt := range tests {
		var got Language
		var ok bool
		if tt.byPath {
			got, ok = LanguageForPath(tt.in)
		} else {
			got, ok = LanguageForScriptType(tt.in)
		}
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
