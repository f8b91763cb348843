package translate

import (
	"errors"
	"fmt"
)

// ErrTranslationFailure matches every error returned by ChunkTranslator.
var ErrTranslationFailure = errors.New("translation failed")

// Error reports the chunk whose translation failed. Output from other
// chunks of the same call is discarded.
type Error struct {
	Engine string
	Chunk  int
	Err    error
}

func (e *Error) Error() string {
	if e.Chunk < 0 {
		return fmt.Sprintf("translation failed (%s): %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("translation failed (%s, chunk %d): %v", e.Engine, e.Chunk, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrTranslationFailure }
