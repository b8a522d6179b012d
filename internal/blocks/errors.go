package blocks

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBlockType marks a component uid with no renderer. It is never fatal.
	ErrUnknownBlockType = errors.New("unknown block type")
	// ErrInvalidEnumValue marks a style, aspect ratio, language or format outside its set.
	ErrInvalidEnumValue = errors.New("invalid enum value")
	// ErrMissingRequiredField marks an absent required field.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMalformedAsset marks an image with neither a canonical url nor a usable format.
	ErrMalformedAsset = errors.New("malformed asset")
)

// BlockError locates a rendering failure within a block.
type BlockError struct {
	ID    int
	Kind  Kind
	Field string
	Value string
	Err   error
}

func (e *BlockError) Error() string {
	msg := fmt.Sprintf("block %d (%s)", e.ID, e.Kind)
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	msg += ": " + e.Err.Error()
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	return msg
}

func (e *BlockError) Unwrap() error { return e.Err }

// Fatal reports whether the block must be rejected. Unknown types are not fatal.
func (e *BlockError) Fatal() bool {
	return !errors.Is(e.Err, ErrUnknownBlockType)
}

func missing(b Block, field string) *BlockError {
	return &BlockError{ID: b.BlockID(), Kind: b.Kind(), Field: field, Err: ErrMissingRequiredField}
}

func invalid(b Block, field, value string) *BlockError {
	return &BlockError{ID: b.BlockID(), Kind: b.Kind(), Field: field, Value: value, Err: ErrInvalidEnumValue}
}

// assetError binds an image resolution error to the block and field that referenced the image.
func assetError(b Block, field string, err error) *BlockError {
	return &BlockError{ID: b.BlockID(), Kind: b.Kind(), Field: field, Err: err}
}
