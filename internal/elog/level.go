package elog

import (
	"fmt"
	"strings"
)

// Level is a report severity on the engine's numeric scale.
type Level int32

const (
	Debug5  Level = 10
	Debug4  Level = 11
	Debug3  Level = 12
	Debug2  Level = 13
	Debug1  Level = 14
	Log     Level = 15
	Info    Level = 17
	Notice  Level = 18
	Warning Level = 19
	Error   Level = 20
	Fatal   Level = 21
	Panic   Level = 22
)

// Levels lists every level from least to most severe.
var Levels = []Level{Debug5, Debug4, Debug3, Debug2, Debug1, Log, Info, Notice, Warning, Error, Fatal, Panic}

var levelNames = map[Level]string{
	Debug5:  "DEBUG5",
	Debug4:  "DEBUG4",
	Debug3:  "DEBUG3",
	Debug2:  "DEBUG2",
	Debug1:  "DEBUG1",
	Log:     "LOG",
	Info:    "INFO",
	Notice:  "NOTICE",
	Warning: "WARNING",
	Error:   "ERROR",
	Fatal:   "FATAL",
	Panic:   "PANIC",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// IsDiverting reports whether a report at level abandons normal return.
func IsDiverting(level Level) bool {
	return level >= Error
}

// IsVisible reports whether a report at level passes the min threshold.
func IsVisible(level, min Level) bool {
	return level >= min
}

// ParseLevel parses a level name such as "warning" or "DEBUG2".
// "debug" is accepted as DEBUG2, matching the engine's configuration alias.
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "DEBUG" {
		return Debug2, nil
	}
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return 0, newWithSentinel(ErrUnknownLevel, fmt.Sprintf("unknown severity level %q", name))
}
