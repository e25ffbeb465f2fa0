package elog

import (
	"fmt"
)

// SQLState is a five-character status code packed six bits per character,
// first character in the low bits.
type SQLState int32

const sqlStateLen = 5

// Well-known codes.
var (
	SuccessfulCompletion     = MustSQLState("00000")
	CharacterNotInRepertoire = MustSQLState("22021")
	ExternalRoutineException = MustSQLState("38000")
	RaiseException           = MustSQLState("P0001")
	InternalError            = MustSQLState("XX000")
)

func sixbit(ch byte) int32 {
	return int32(ch-'0') & 0x3f
}

func isSQLStateChar(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('A' <= ch && ch <= 'Z')
}

// MakeSQLState packs a five-character code made of digits and upper-case letters.
func MakeSQLState(code string) (SQLState, error) {
	if len(code) != sqlStateLen {
		return 0, newWithSentinel(ErrInvalidSQLState, fmt.Sprintf("sqlstate %q must be %d characters", code, sqlStateLen))
	}
	var packed int32
	for i := 0; i < sqlStateLen; i++ {
		ch := code[i]
		if !isSQLStateChar(ch) {
			return 0, newWithSentinel(ErrInvalidSQLState, fmt.Sprintf("sqlstate %q has invalid character %q", code, ch))
		}
		packed += sixbit(ch) << (6 * i)
	}
	return SQLState(packed), nil
}

// MustSQLState is MakeSQLState for constant codes; it panics on a malformed code.
func MustSQLState(code string) SQLState {
	s, err := MakeSQLState(code)
	if err != nil {
		panic(err)
	}
	return s
}

// String unpacks the five characters.
func (s SQLState) String() string {
	var buf [sqlStateLen]byte
	for i := range buf {
		buf[i] = byte((int32(s)>>(6*i))&0x3f) + '0'
	}
	return string(buf[:])
}

// Class returns the two-character class of the code.
func (s SQLState) Class() string {
	return s.String()[:2]
}

// Valid reports whether s unpacks to characters of the SQLSTATE alphabet and
// carries no bits above the five packed characters.
func (s SQLState) Valid() bool {
	if s < 0 || int64(s) >= 1<<(6*sqlStateLen) {
		return false
	}
	str := s.String()
	for i := 0; i < len(str); i++ {
		if !isSQLStateChar(str[i]) {
			return false
		}
	}
	return true
}
