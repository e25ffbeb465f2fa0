package elog

import "strings"

// Field identifies an attachable report field.
type Field uint8

const (
	FieldMessage Field = 1 << iota
	FieldDetail
	FieldHint
	FieldCode
)

func (f Field) String() string {
	var names []string
	for _, n := range []struct {
		f    Field
		name string
	}{{FieldMessage, "message"}, {FieldDetail, "detail"}, {FieldHint, "hint"}, {FieldCode, "code"}} {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Record is one error report as committed to the engine.
type Record struct {
	Level    Level
	File     string
	Line     int
	FuncName string
	Domain   string
	Message  string
	Detail   string
	Hint     string
	Code     SQLState
	// Fields records which optional fields were attached.
	Fields Field
}

// Has reports whether field f was attached.
func (r Record) Has(f Field) bool {
	return r.Fields&f == f
}
