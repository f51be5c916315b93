// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package expr evaluates variable expressions against an entity's context
// document. Expressions are gjson paths (dotted properties, numeric array
// indices, # queries and modifiers) so they can read the document but can
// neither loop forever nor reach anything outside it.
//
// Evaluation never fails from the caller's point of view: any problem is
// reported inline as an "[ERROR: ...]" sentinel so one bad mapping cannot
// abort the rest of a generation run.
package expr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = time.Second

const (
	sentinelPrefix = "[ERROR: "
	sentinelSuffix = "]"
)

// Evaluator runs expressions with a hard wall-clock timeout.
type Evaluator struct {
	timeout time.Duration
	resolve func(expression string, data []byte) (string, error)
}

// New creates an Evaluator. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Evaluator{timeout: timeout, resolve: resolve}
}

// Sentinel formats msg as an inline evaluation error.
func Sentinel(msg string) string {
	return sentinelPrefix + msg + sentinelSuffix
}

// IsError reports whether v is an evaluation error sentinel.
func IsError(v string) bool {
	return strings.HasPrefix(v, sentinelPrefix) && strings.HasSuffix(v, sentinelSuffix)
}

type outcome struct {
	value string
	err   error
}

// Evaluate resolves expression against the JSON document data and returns
// the value converted to a string. It never returns an error; failures come
// back as a sentinel and are logged.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, data []byte) string {
	expression = strings.TrimSpace(expression)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		v, err := e.resolve(expression, data)
		done <- outcome{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return e.fail(expression, fmt.Errorf("evaluation timed out after %s", e.timeout))
	case out := <-done:
		if out.err != nil {
			return e.fail(expression, out.err)
		}
		return out.value
	}
}

func (e *Evaluator) fail(expression string, err error) string {
	slog.Warn("expression evaluation failed", "expression", expression, "error", err)
	return Sentinel(err.Error())
}

// resolve evaluates one path. A missing final property of an existing
// object resolves to "", like reading an undefined property; a path that
// runs through a missing value is an error.
func resolve(expression string, data []byte) (string, error) {
	if expression == "" {
		return "", fmt.Errorf("empty expression")
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("context is not valid JSON")
	}

	path := bracketPath(expression)
	res := gjson.GetBytes(data, path)
	if res.Exists() {
		return format(res), nil
	}

	segments, plain := splitPath(path)
	if !plain {
		return "", fmt.Errorf("%s: no value", expression)
	}

	// Walk the prefixes to find which segment was read from a missing value.
	for i := 1; i < len(segments); i++ {
		prefix := strings.Join(segments[:i], ".")
		if gjson.GetBytes(data, prefix).Exists() {
			continue
		}
		return "", fmt.Errorf("cannot read %q of undefined (%s)", unescape(segments[i]), unescape(prefix))
	}

	if len(segments) == 1 {
		return "", fmt.Errorf("%s is not defined", unescape(segments[0]))
	}
	parent := gjson.GetBytes(data, strings.Join(segments[:len(segments)-1], "."))
	if parent.IsObject() || parent.IsArray() {
		return "", nil
	}
	return "", fmt.Errorf("cannot read %q of %s", unescape(segments[len(segments)-1]), parent.Type)
}

// bracketPath rewrites bracket member access into gjson segments:
// a[0] becomes a.0 and a["b.c"] becomes a.b\.c. Brackets inside query
// parentheses, and any other bracket form, are left as they are.
func bracketPath(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\' && i+1 < len(path):
			b.WriteByte(c)
			i++
			b.WriteByte(path[i])
			continue
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == '[' && depth == 0:
			if seg, n, ok := bracketSegment(path[i:]); ok {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), ".") {
					b.WriteByte('.')
				}
				b.WriteString(seg)
				i += n - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// bracketSegment parses a leading [digits], ["key"] or ['key'] and returns
// the gjson segment and the number of bytes consumed.
func bracketSegment(s string) (segment string, n int, ok bool) {
	end := strings.IndexByte(s, ']')
	if end < 2 {
		return "", 0, false
	}
	inner := s[1:end]
	if strings.Trim(inner, "0123456789") == "" {
		return inner, end + 1, true
	}
	if len(inner) < 2 || (inner[0] != '"' && inner[0] != '\'') || inner[len(inner)-1] != inner[0] {
		return "", 0, false
	}
	key := inner[1 : len(inner)-1]
	if key == "" || strings.ContainsAny(key, "\"'\\") {
		return "", 0, false
	}
	return escapeKey(key), end + 1, true
}

// escapeKey escapes the characters gjson treats as path syntax.
func escapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if strings.IndexByte(".*?#|@!=<>%[]{}()", key[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}

// splitPath splits a plain dotted path on unescaped dots. plain is false
// when the path uses query, wildcard, modifier or pipe syntax, where the
// prefix walk has no meaning.
func splitPath(path string) (segments []string, plain bool) {
	var cur strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '\\':
			cur.WriteByte(c)
			if i+1 < len(path) {
				i++
				cur.WriteByte(path[i])
			}
		case '.':
			segments = append(segments, cur.String())
			cur.Reset()
		case '#', '*', '?', '@', '|', '!', '=', '<', '>', '%', '[', '{':
			return nil, false
		default:
			cur.WriteByte(c)
		}
	}
	segments = append(segments, cur.String())
	return segments, true
}

func unescape(segment string) string {
	return strings.ReplaceAll(segment, `\`, "")
}

// format converts a gjson result the way template authors expect a value
// to print: strings verbatim, numbers as written upstream, null as empty.
func format(res gjson.Result) string {
	switch res.Type {
	case gjson.String:
		return res.Str
	case gjson.Number:
		return res.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Null:
		return ""
	}

	if res.IsArray() {
		items := res.Array()
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, format(item))
		}
		return strings.Join(parts, ", ")
	}
	return res.Raw
}
