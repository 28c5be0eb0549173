package auth

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// PromptKey asks for the app key on the terminal without echoing it.
func PromptKey(out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "App key: ")

	raw, err := term.ReadPassword(int(syscall.Stdin))

	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("reading app key: %w", err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", stratus.ErrAppKeyEmpty
	}

	return key, nil
}
