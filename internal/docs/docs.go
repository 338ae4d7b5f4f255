// Package docs opens the AWS CLI reference documentation page matching
// the current input line in the system browser.
package docs

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/robottwo/sawsh/internal/grammar"
)

const (
	baseURL   = "https://docs.aws.amazon.com/cli/latest/reference/"
	indexPage = "index.html"

	// Keyword recognizes a documentation request at the end of a line.
	Keyword = "docs"
)

// Opener launches a URL. The default implementation shells out to the
// platform browser launcher; tests substitute their own.
type Opener func(url string) error

// Handler resolves doc requests on input lines and opens the matching
// reference page.
type Handler struct {
	store  *grammar.Store
	logger *zap.Logger
	open   Opener
}

// NewHandler creates a Handler. A nil opener uses the system browser.
func NewHandler(store *grammar.Store, logger *zap.Logger, open Opener) *Handler {
	if open == nil {
		open = openBrowser
	}
	return &Handler{store: store, logger: logger, open: open}
}

// Handle inspects line for a trailing docs request and opens the matching
// page. It reports whether the line was consumed as a doc request; a false
// return means the line should be treated as a normal command.
func (h *Handler) Handle(line string) bool {
	url, ok := URLFor(h.store, line)
	if !ok {
		return false
	}
	h.logger.Info("opening documentation", zap.String("url", url))
	if err := h.open(url); err != nil {
		h.logger.Warn("failed to open documentation", zap.String("url", url), zap.Error(err))
	}
	return true
}

// HandleContext opens the reference page for the line as it stands,
// without requiring the docs keyword. Used by the doc key binding.
func (h *Handler) HandleContext(line string) {
	h.Handle(strings.TrimSpace(line) + " " + Keyword)
}

// URLFor maps a line ending in the docs keyword to a reference page URL.
//
//	"ec2 docs"                    -> <base>/ec2/index.html
//	"ec2 describe-instances docs" -> <base>/ec2/describe-instances.html
//	"docs"                        -> <base>/index.html
//
// Anything before the final command or subcommand token is ignored, so the
// keyword works on a line already holding options. The second return is
// false when the line contains no docs request at all.
func URLFor(store *grammar.Store, line string) (string, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[len(tokens)-1] != Keyword {
		return "", false
	}

	if len(tokens) >= 2 {
		prev := tokens[len(tokens)-2]
		if prev == store.Root() {
			return baseURL + indexPage, true
		}
		if store.IsCommand(prev) {
			return fmt.Sprintf("%s%s/%s", baseURL, prev, indexPage), true
		}
		if len(tokens) >= 3 {
			command := tokens[len(tokens)-3]
			if store.IsSubCommandOf(command, prev) {
				return fmt.Sprintf("%s%s/%s.html", baseURL, command, prev), true
			}
		}
	}

	return baseURL + indexPage, true
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	return nil
}
