package checkpointer

import (
	"fmt"
	"time"
)

// FilenameEnumerator returns a function which returns the filename
// prefix followed by a counter and extension. The counter starts at
// start+1 and increases by one on each call, so checkpoints are kept in
// separate files values1.bin, values2.bin, ..., valuesK.bin.
func FilenameEnumerator(start int, prefix, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%d%v", prefix, i, extension)
	}
}

// FileTimer returns a function which returns the filename prefix
// followed by the number of nanoseconds since January 1, 1970 and
// extension
func FileTimer(prefix, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%d%v", prefix, time.Now().UnixNano(),
			extension)
	}
}

// Latest returns a function which always returns filename, so that
// each checkpoint overwrites the previous one
func Latest(filename string) func() string {
	return func() string { return filename }
}
