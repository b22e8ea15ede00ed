package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// readColorMode accepts the same auto|on|off vocabulary as --ui.
func readColorMode(value string) (uiMode, error) {
	mode, err := readUIMode(value)
	if err != nil {
		return "", fmt.Errorf("invalid color value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// enabledFor resolves auto against w: only terminals get colour or a TUI.
func (mode uiMode) enabledFor(w io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		f, ok := w.(*os.File)
		return ok && isTerminal(f)
	}
}
