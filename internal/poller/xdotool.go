package poller

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// XTool polls the active window via xdotool/xprop and idle time via
// xprintidle. Works on X11 and for XWayland windows.
type XTool struct{}

var _ Source = (*XTool)(nil)

// ActiveWindow shells out to xdotool for the focused window's title
// and to xprop for its WM_CLASS.
func (XTool) ActiveWindow(ctx context.Context) (Window, error) {
	title, err := run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return Window{}, fmt.Errorf("get window title: %w", err)
	}

	wid, err := run(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return Window{}, fmt.Errorf("get window id: %w", err)
	}

	wmClass := ""
	if out, err := run(ctx, "xprop", "-id", wid, "WM_CLASS"); err == nil {
		wmClass = parseWMClass(out)
	}

	return Window{WMClass: wmClass, Title: title}, nil
}

// parseWMClass extracts the class from an xprop WM_CLASS line:
// WM_CLASS(STRING) = "instance", "class"
func parseWMClass(out string) string {
	parts := strings.Split(out, `"`)
	if len(parts) > 3 {
		return parts[3]
	}
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// IdleTime shells out to xprintidle, which reports idle milliseconds.
func (XTool) IdleTime(ctx context.Context) (time.Duration, error) {
	out, err := run(ctx, "xprintidle")
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	ms, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle time %q: %w", out, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
