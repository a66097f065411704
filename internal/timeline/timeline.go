// Package timeline serializes a panel timing sequence into an editable
// Premiere Pro project file (FCP7 "xmeml" dialect). The serializer is a
// pure transformation: same inputs, byte-identical output.
package timeline

import (
	"errors"
	"math"
)

// FPS is the fixed frame rate of every generated sequence. All time values
// are quantized to integer frames at this rate before they reach the
// document.
const FPS = 30

// ErrSerialization marks input the serializer refuses to turn into a
// document. Unlike timing validation failures it is fatal to the request.
var ErrSerialization = errors.New("timeline serialization failed")

// Frames converts seconds to an integer frame count, rounding half up.
// This is the system's only source of timing quantization error, so the
// rounding mode is fixed here and nowhere else.
func Frames(seconds float64) int {
	return int(math.Floor(seconds*FPS + 0.5))
}
