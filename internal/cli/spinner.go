package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressLine animates a single status line on out, re-reading status on
// every frame. The returned stop function blocks until the line is erased and
// may be called any number of times. Canceling ctx also erases the line.
func progressLine(ctx context.Context, out io.Writer, status func() string) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()

		widest := 0
		for frame := 0; ; frame++ {
			select {
			case <-ctx.Done():
				if widest > 0 {
					fmt.Fprintf(out, "\r%s\r", strings.Repeat(" ", widest))
				}
				return
			case <-tick.C:
				msg := status()
				line := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(msg)
				fmt.Fprint(out, "\r"+line)
				widest = max(widest, len(msg)+4)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-finished
		})
	}
}
