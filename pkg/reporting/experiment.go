package reporting

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// NewExperimentID returns the given name unchanged, or derives one from the
// current time plus a short unique suffix when the name is empty.
func NewExperimentID(name string) string {
	if name != "" {
		return name
	}
	now := time.Now()
	return fmt.Sprintf("%d-%d-%d-%d-%d-%s",
		now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute(),
		uuid.NewString()[:8])
}

// EnsureDir creates the output directory for an experiment if it does not
// exist yet and returns its path.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
