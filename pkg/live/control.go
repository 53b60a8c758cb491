package live

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"imagefx/pkg/effect"
)

// Control reads one selection per line ("blur ksize=9", "canny", ...) and
// stores it in s while frames keep streaming. Blank lines and lines starting
// with '#' are skipped, bad lines are logged and ignored. It returns when r is
// exhausted or ctx is done.
func Control(ctx context.Context, r io.Reader, s *Session, logger *zap.Logger) error {
	log := logger.With(zap.String("via", "live-control"))
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		eff, err := effect.ParseSelection(line)
		if err != nil {
			log.With(zap.String("line", line), zap.Error(err)).Info("selection ignored")
			continue
		}

		s.Select(eff)
		log.With(zap.String("effect", effect.Describe(eff))).Debug("selected")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read selections failed: %w", err)
	}
	return nil
}
