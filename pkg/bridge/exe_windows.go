//go:build windows

package bridge

const exeSuffix = ".exe"
