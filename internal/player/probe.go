package player

import (
	"context"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// ProbeDuration reads the duration of a local media file in seconds. Only
// the dev harness uses this to give its simulated elements realistic
// lengths; in the viewer, durations come from the player or the declared
// activity duration.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	info, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		return 0, err
	}

	return info.Format.Duration().Seconds(), nil
}
