package controller

import "github.com/atotto/clipboard"

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Available reports whether a clipboard utility was found.
func (SystemClipboard) Available() bool { return !clipboard.Unsupported }
