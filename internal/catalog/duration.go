package catalog

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/tcolgate/mp3"
)

// AudioDuration measures an mp3 file by summing frame durations. A
// truncated final frame is tolerated as long as some frames decoded.
func AudioDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := mp3.NewDecoder(f)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if frames > 0 {
				break
			}
			return 0, err
		}
		total += frame.Duration()
		frames++
	}
	return total, nil
}
