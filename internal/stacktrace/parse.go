// Package stacktrace parses V8-format stack text into structured frames.
// The temps platform deploys Node applications; errors reported by their
// runtimes carry stacks in this shape.
package stacktrace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tempslabs/errtrack/internal/protocol"
)

// maxFrames bounds the number of frames kept from a single stack.
const maxFrames = 50

var (
	// at eval (eval at outerFn (file:line:col), <anonymous>:1:1)
	evalRe = regexp.MustCompile(`^\s*at eval \(eval at ([^\s(]+) \((.+?):(\d+):(\d+)\)`)
	// at [fn (]file:line:col[)]
	frameColRe = regexp.MustCompile(`^\s*at (?:(.+?) \()?(.+?):(\d+):(\d+)\)?\s*$`)
	// at [fn (]file:line[)]
	frameRe = regexp.MustCompile(`^\s*at (?:(.+?) \()?(.+?):(\d+)\)?\s*$`)
)

// Parse turns raw stack text into structured frames, most recent call first.
// Frames appear in reverse of their textual order, capped at maxFrames.
// Lines matching no known grammar are skipped. Empty stack text yields an
// empty list.
func Parse(stack string) []protocol.StackFrame {
	frames := []protocol.StackFrame{}
	if stack == "" {
		return frames
	}

	for _, line := range strings.Split(stack, "\n") {
		if !strings.Contains(line, "at ") {
			continue
		}
		frame, ok := parseLine(line)
		if !ok {
			continue
		}
		frames = append(frames, frame)
		if len(frames) >= maxFrames {
			break
		}
	}

	// Reverse so the frame closest to the point of throw comes first.
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

// parseLine tries the three line grammars, most specific first.
func parseLine(line string) (protocol.StackFrame, bool) {
	if m := evalRe.FindStringSubmatch(line); m != nil {
		return makeFrame("eval at "+m[1], m[2], m[3], m[4]), true
	}
	if m := frameColRe.FindStringSubmatch(line); m != nil {
		return makeFrame(m[1], m[2], m[3], m[4]), true
	}
	if m := frameRe.FindStringSubmatch(line); m != nil {
		return makeFrame(m[1], m[2], m[3], ""), true
	}
	return protocol.StackFrame{}, false
}

func makeFrame(function, filename, line, col string) protocol.StackFrame {
	if function == "" {
		function = "<anonymous>"
	}
	lineno, _ := strconv.Atoi(line)
	colno := 0
	if col != "" {
		colno, _ = strconv.Atoi(col)
	}
	return protocol.StackFrame{
		Filename: filename,
		Function: function,
		Lineno:   lineno,
		Colno:    colno,
		AbsPath:  filename,
		InApp:    isInApp(filename),
	}
}

// isInApp reports whether a frame belongs to application code rather than
// dependency or runtime-internal code.
func isInApp(filename string) bool {
	if strings.Contains(filename, "node_modules") {
		return false
	}
	if strings.HasPrefix(filename, "internal/") {
		return false
	}
	if strings.HasPrefix(filename, "node:") {
		return false
	}
	return true
}
