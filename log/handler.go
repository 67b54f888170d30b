package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// phaseColors mirrors the palette the original simulator printed with:
// blue proposals, yellow prevotes, magenta precommits/locks, green
// decisions, cyan round starts.
var phaseColors = map[string]*color.Color{
	"PROPOSAL":  color.New(color.FgBlue),
	"PREVOTE":   color.New(color.FgYellow),
	"PRECOMMIT": color.New(color.FgMagenta),
	"LOCKED":    color.New(color.FgMagenta, color.Bold),
	"DECIDED":   color.New(color.FgGreen, color.Bold),
	"ROUND":     color.New(color.FgCyan),
	"TIMEOUT":   color.New(color.FgYellow, color.Faint),
}

var lvlColors = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgRed, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgWhite),
	LvlDebug: color.New(color.FgHiBlack),
}

// FuncHandler turns a plain function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes colorized, human-readable records to w when w is a
// terminal, falling back to a plain format otherwise. It wraps w with
// go-colorable so ANSI sequences render correctly on Windows consoles, and
// probes w with go-isatty the way go-ethereum's log package does.
func StreamHandler(w io.Writer) Handler {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		line := formatRecord(r, useColor)
		_, err := io.WriteString(w, line)
		return err
	})
}

func formatRecord(r *Record, useColor bool) string {
	ts := r.Time.Format("15:04:05.000")
	lvl := r.Lvl.String()
	if useColor {
		if c, ok := lvlColors[r.Lvl]; ok {
			lvl = c.Sprint(lvl)
		}
	}
	line := fmt.Sprintf("%s [%s] %s", ts, lvl, r.Msg)

	phase := phaseOf(r.Ctx)
	if useColor && phase != "" {
		if c, ok := phaseColors[phase]; ok {
			line = fmt.Sprintf("%s [%s] %s", ts, lvl, c.Sprint(r.Msg))
		}
	}

	if len(r.Ctx) > 0 {
		line += " " + formatCtx(r.Ctx)
	}
	return line + "\n"
}

// phaseOf looks for a "phase" key in the context pairs so the handler can
// color the message body by consensus phase rather than only by level.
func phaseOf(ctx []interface{}) string {
	for i := 0; i+1 < len(ctx); i += 2 {
		if key, ok := ctx[i].(string); ok && key == "phase" {
			if v, ok := ctx[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}

func formatCtx(ctx []interface{}) string {
	pairs := make([]string, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		k, _ := ctx[i].(string)
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, ctx[i+1]))
	}
	sort.Strings(pairs)
	out := ""
	for i, p := range pairs {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// DiscardHandler drops every record; useful for quiet test runs.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}
