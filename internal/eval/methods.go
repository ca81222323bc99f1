// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/value"
)

// methodSigs lists every callable method name. A name is accepted at
// compile time if it appears here; the receiver kind is checked when the
// call runs.
var methodSigs = map[string]signature{
	"upper":      {0, 0, nil},
	"lower":      {0, 0, nil},
	"title":      {0, 0, nil},
	"capitalize": {0, 0, nil},
	"swapcase":   {0, 0, nil},
	"strip":      {0, 1, nil},
	"lstrip":     {0, 1, nil},
	"rstrip":     {0, 1, nil},
	"split":      {0, 2, []string{"sep", "maxsplit"}},
	"rsplit":     {0, 2, []string{"sep", "maxsplit"}},
	"splitlines": {0, 1, []string{"keepends"}},
	"replace":    {2, 3, nil},
	"startswith": {1, 1, nil},
	"endswith":   {1, 1, nil},
	"find":       {1, 1, nil},
	"rfind":      {1, 1, nil},
	"index":      {1, 1, nil},
	"count":      {1, 1, nil},
	"join":       {1, 1, nil},
	"isdigit":    {0, 0, nil},
	"isalpha":    {0, 0, nil},
	"isalnum":    {0, 0, nil},
	"isspace":    {0, 0, nil},
	"isupper":    {0, 0, nil},
	"islower":    {0, 0, nil},
	"zfill":      {1, 1, nil},
	"ljust":      {1, 2, nil},
	"rjust":      {1, 2, nil},
	"center":     {1, 2, nil},
}

// seqMethods are the methods lists and tuples support.
var seqMethods = map[string]bool{"count": true, "index": true}

func callMethod(recv value.Value, name string, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	switch x := recv.(type) {
	case value.Str:
		return strMethod(string(x), name, args, kw)
	case value.List, value.Tuple:
		if seqMethods[name] {
			elems, _ := value.Elems(x)
			return seqMethod(elems, value.TypeName(x), name, args[0])
		}
	}
	return nil, attributeError("'%s' object has no attribute '%s'", value.TypeName(recv), name)
}

func seqMethod(elems []value.Value, typeName, name string, arg value.Value) (value.Value, error) {
	n := 0
	for i, e := range elems {
		if value.Equal(e, arg) {
			if name == "index" {
				return value.Int(i), nil
			}
			n++
		}
	}
	if name == "index" {
		return nil, valueError("%s.index(x): x not in %s", typeName, typeName)
	}
	return value.Int(n), nil
}

func strArg(method string, v value.Value) (string, error) {
	s, ok := v.(value.Str)
	if !ok {
		return "", typeError("%s() argument must be str, not %s", method, value.TypeName(v))
	}
	return string(s), nil
}

func intArg(method string, v value.Value) (int64, error) {
	n, ok := value.AsInt(v)
	if !ok {
		return 0, typeError("%s(): '%s' object cannot be interpreted as an integer", method, value.TypeName(v))
	}
	return n, nil
}

func strMethod(s, name string, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	switch name {
	case "upper":
		return value.Str(strings.ToUpper(s)), nil
	case "lower":
		return value.Str(strings.ToLower(s)), nil
	case "title":
		return value.Str(title(s)), nil
	case "capitalize":
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return value.Str(""), nil
		}
		return value.Str(string(unicode.ToUpper(r)) + strings.ToLower(s[size:])), nil
	case "swapcase":
		return value.Str(strings.Map(func(r rune) rune {
			if unicode.IsUpper(r) {
				return unicode.ToLower(r)
			}
			return unicode.ToUpper(r)
		}, s)), nil
	case "strip", "lstrip", "rstrip":
		return stripMethod(s, name, args)
	case "split", "rsplit":
		return splitMethod(s, name, args, kw)
	case "splitlines":
		keep := false
		if len(args) == 1 {
			keep = value.Truthy(args[0])
		} else if v, ok := kw["keepends"]; ok {
			keep = value.Truthy(v)
		}
		var lines []string
		if keep {
			lines = record.SplitLinesKeepEnds(s)
		} else {
			lines = record.SplitLines(s)
		}
		return strList(lines), nil
	case "replace":
		old, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		repl, err := strArg(name, args[1])
		if err != nil {
			return nil, err
		}
		n := int64(-1)
		if len(args) == 3 {
			if n, err = intArg(name, args[2]); err != nil {
				return nil, err
			}
		}
		if old == "" && int64(utf8.RuneCountInString(s)+1)*int64(len(repl)) > maxElems {
			return nil, memoryError("replace() result too large")
		}
		return value.Str(strings.Replace(s, old, repl, int(n))), nil
	case "startswith", "endswith":
		return affixMethod(s, name, args[0])
	case "find", "rfind", "index":
		sub, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s, sub)
		if name == "rfind" {
			idx = strings.LastIndex(s, sub)
		}
		if idx < 0 {
			if name == "index" {
				return nil, valueError("substring not found")
			}
			return value.Int(-1), nil
		}
		return value.Int(utf8.RuneCountInString(s[:idx])), nil
	case "count":
		sub, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		return value.Int(strings.Count(s, sub)), nil
	case "join":
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, it := range items {
			str, ok := it.(value.Str)
			if !ok {
				return nil, typeError("sequence item %d: expected str instance, %s found", i, value.TypeName(it))
			}
			parts[i] = string(str)
		}
		return value.Str(strings.Join(parts, s)), nil
	case "isdigit":
		return value.Bool(allRunes(s, unicode.IsDigit)), nil
	case "isalpha":
		return value.Bool(allRunes(s, unicode.IsLetter)), nil
	case "isalnum":
		return value.Bool(allRunes(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsNumber(r) })), nil
	case "isspace":
		return value.Bool(allRunes(s, record.IsSpace)), nil
	case "isupper":
		return value.Bool(casedAll(s, unicode.IsUpper, unicode.IsLower)), nil
	case "islower":
		return value.Bool(casedAll(s, unicode.IsLower, unicode.IsUpper)), nil
	case "zfill":
		width, err := intArg(name, args[0])
		if err != nil {
			return nil, err
		}
		return zfill(s, width)
	case "ljust", "rjust", "center":
		return justify(s, name, args)
	}
	return nil, attributeError("'str' object has no attribute '%s'", name)
}

func strList(parts []string) value.List {
	out := make(value.List, len(parts))
	for i, p := range parts {
		out[i] = value.Str(p)
	}
	return out
}

func allRunes(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// casedAll reports whether s has at least one cased rune and none of the
// opposite case.
func casedAll(s string, want, other func(rune) bool) bool {
	found := false
	for _, r := range s {
		if other(r) {
			return false
		}
		if want(r) {
			found = true
		}
	}
	return found
}

func title(s string) string {
	var sb strings.Builder
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if prevCased {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToTitle(r))
			}
			prevCased = true
		default:
			sb.WriteRune(r)
			prevCased = false
		}
	}
	return sb.String()
}

func stripMethod(s, name string, args []value.Value) (value.Value, error) {
	cut := func(r rune) bool { return record.IsSpace(r) }
	if len(args) == 1 && !value.IsNull(args[0]) {
		chars, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		cut = func(r rune) bool { return strings.ContainsRune(chars, r) }
	}
	switch name {
	case "lstrip":
		return value.Str(strings.TrimLeftFunc(s, cut)), nil
	case "rstrip":
		return value.Str(strings.TrimRightFunc(s, cut)), nil
	}
	return value.Str(strings.TrimFunc(s, cut)), nil
}

func splitMethod(s, name string, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	var sepArg value.Value = value.None
	var maxArg value.Value = value.Int(-1)
	if len(args) > 0 {
		sepArg = args[0]
	} else if v, ok := kw["sep"]; ok {
		sepArg = v
	}
	if len(args) > 1 {
		maxArg = args[1]
	} else if v, ok := kw["maxsplit"]; ok {
		maxArg = v
	}
	maxsplit, err := intArg(name, maxArg)
	if err != nil {
		return nil, err
	}
	if value.IsNull(sepArg) {
		if name == "rsplit" {
			return strList(rsplitSpace(s, maxsplit)), nil
		}
		return strList(splitSpace(s, maxsplit)), nil
	}
	sep, err := strArg(name, sepArg)
	if err != nil {
		return nil, err
	}
	if sep == "" {
		return nil, valueError("empty separator")
	}
	if maxsplit < 0 {
		return strList(strings.Split(s, sep)), nil
	}
	if name == "split" {
		return strList(strings.SplitN(s, sep, int(maxsplit)+1)), nil
	}
	var parts []string
	rest := s
	for n := int64(0); n < maxsplit; n++ {
		idx := strings.LastIndex(rest, sep)
		if idx < 0 {
			break
		}
		parts = append(parts, rest[idx+len(sep):])
		rest = rest[:idx]
	}
	parts = append(parts, rest)
	reverseStrings(parts)
	return strList(parts), nil
}

// splitSpace splits on whitespace runs, at most maxsplit times when
// maxsplit >= 0. The unsplit remainder keeps its inner whitespace.
func splitSpace(s string, maxsplit int64) []string {
	parts := []string{}
	rest := strings.TrimLeftFunc(s, record.IsSpace)
	for rest != "" {
		if maxsplit >= 0 && int64(len(parts)) == maxsplit {
			parts = append(parts, rest)
			break
		}
		end := strings.IndexFunc(rest, record.IsSpace)
		if end < 0 {
			parts = append(parts, rest)
			break
		}
		parts = append(parts, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], record.IsSpace)
	}
	return parts
}

func rsplitSpace(s string, maxsplit int64) []string {
	parts := []string{}
	rest := strings.TrimRightFunc(s, record.IsSpace)
	for rest != "" {
		if maxsplit >= 0 && int64(len(parts)) == maxsplit {
			parts = append(parts, rest)
			break
		}
		start := strings.LastIndexFunc(rest, record.IsSpace)
		if start < 0 {
			parts = append(parts, rest)
			break
		}
		_, size := utf8.DecodeRuneInString(rest[start:])
		parts = append(parts, rest[start+size:])
		rest = strings.TrimRightFunc(rest[:start], record.IsSpace)
	}
	reverseStrings(parts)
	return parts
}

func reverseStrings(parts []string) {
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
}

func affixMethod(s, name string, arg value.Value) (value.Value, error) {
	has := strings.HasPrefix
	if name == "endswith" {
		has = strings.HasSuffix
	}
	if t, ok := arg.(value.Tuple); ok {
		for _, item := range t {
			affix, err := strArg(name, item)
			if err != nil {
				return nil, err
			}
			if has(s, affix) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}
	affix, ok := arg.(value.Str)
	if !ok {
		return nil, typeError("%s first arg must be str or a tuple of str, not %s", name, value.TypeName(arg))
	}
	return value.Bool(has(s, string(affix))), nil
}

func zfill(s string, width int64) (value.Value, error) {
	n := int64(utf8.RuneCountInString(s))
	if width <= n {
		return value.Str(s), nil
	}
	if width > maxElems {
		return nil, memoryError("zfill() result too large")
	}
	pad := strings.Repeat("0", int(width-n))
	if s != "" && (s[0] == '-' || s[0] == '+') {
		return value.Str(s[:1] + pad + s[1:]), nil
	}
	return value.Str(pad + s), nil
}

func justify(s, name string, args []value.Value) (value.Value, error) {
	width, err := intArg(name, args[0])
	if err != nil {
		return nil, err
	}
	fill := " "
	if len(args) == 2 {
		if fill, err = strArg(name, args[1]); err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(fill) != 1 {
			return nil, typeError("The fill character must be exactly one character long")
		}
	}
	n := int64(utf8.RuneCountInString(s))
	if width <= n {
		return value.Str(s), nil
	}
	if width > maxElems {
		return nil, memoryError("%s() result too large", name)
	}
	total := int(width - n)
	switch name {
	case "ljust":
		return value.Str(s + strings.Repeat(fill, total)), nil
	case "rjust":
		return value.Str(strings.Repeat(fill, total) + s), nil
	}
	left := total/2 + (total & int(width) & 1)
	return value.Str(strings.Repeat(fill, left) + s + strings.Repeat(fill, total-left)), nil
}
