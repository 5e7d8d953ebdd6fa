package packer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pagepack/pagepack/pkg/doc"
)

// Notifier is the engine's boundary to the interactive front-end. The
// engine emits a transient user-visible notification for every outcome,
// success or recovered failure, and asks the front-end to select and
// frame the containers it created. Implementations must not block.
type Notifier interface {
	// Notify shows a transient, non-blocking message to the user.
	Notify(message string)

	// SelectAndFrame selects the given nodes on their page and moves the
	// viewport to show them. Purely presentational; correctness of the
	// document data never depends on it.
	SelectAndFrame(page *doc.Page, nodes []*doc.Node)
}

// LogNotifier routes notifications to a logger. It is the default
// notifier for non-interactive use.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
// A nil logger falls back to log.Default.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message at info level.
func (n *LogNotifier) Notify(message string) {
	n.logger.Info(message)
}

// SelectAndFrame logs the selection request at debug level; there is no
// viewport to move.
func (n *LogNotifier) SelectAndFrame(page *doc.Page, nodes []*doc.Node) {
	n.logger.Debug("select and frame", "page", page.Name, "nodes", len(nodes))
}

// NoopNotifier discards all notifications. Useful in tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(string)                         {}
func (NoopNotifier) SelectAndFrame(*doc.Page, []*doc.Node) {}

func notifyPacked(containers int) string {
	return fmt.Sprintf("Packed %s into %q",
		pluralize(containers, "page"), StagingPageName)
}

func notifyUnpacked(pages int) string {
	return fmt.Sprintf("Unpacked %s from %q",
		pluralize(pages, "page"), StagingPageName)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
