// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/value"
)

// Record-bound names visible to every expression.
const (
	NameText   = "s"
	NameIndex  = "i"
	NameFields = "f"
)

// Context holds the names bound for one record plus comprehension locals.
// Fields are converted only when an expression reads f.
type Context struct {
	rec    *record.Record
	fields value.Value
	locals []local
}

type local struct {
	name string
	val  value.Value
}

// Bind creates the evaluation context for rec.
func Bind(rec *record.Record) *Context {
	return &Context{rec: rec}
}

// Record returns the bound record.
func (c *Context) Record() *record.Record {
	return c.rec
}

// Get resolves a name. Locals shadow record names, innermost first.
func (c *Context) Get(name string) (value.Value, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].val, true
		}
	}
	switch name {
	case NameText:
		return value.Str(c.rec.Text), true
	case NameIndex:
		return value.Int(c.rec.Index), true
	case NameFields:
		if c.fields == nil {
			fields := c.rec.Fields()
			list := make(value.List, len(fields))
			for i, f := range fields {
				list[i] = value.Str(f)
			}
			c.fields = list
		}
		return c.fields, true
	}
	return nil, false
}

func (c *Context) push(name string, v value.Value) {
	c.locals = append(c.locals, local{name: name, val: v})
}

func (c *Context) set(v value.Value) {
	c.locals[len(c.locals)-1].val = v
}

func (c *Context) pop() {
	c.locals = c.locals[:len(c.locals)-1]
}

// isRecordName reports whether name is bound by Bind.
func isRecordName(name string) bool {
	switch name {
	case NameText, NameIndex, NameFields:
		return true
	}
	return false
}
