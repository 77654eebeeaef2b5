package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"Ascend/pkg/bridge"
)

// ErrRateLimited is returned when remote input arrives faster than the
// configured rate. The event is dropped.
var ErrRateLimited = errors.New("remote input rate limit exceeded")

// remoteKeycodes maps remote buttons to Android keycodes
var remoteKeycodes = map[string]int{
	"up":          19,
	"down":        20,
	"left":        21,
	"right":       22,
	"center":      66,
	"home":        3,
	"back":        4,
	"recents":     187,
	"volume_up":   24,
	"volume_down": 25,
	"previous":    88,
	"next":        87,
	"play_pause":  85,
}

// GetRemoteKeys lists the remote button names
func (a *App) GetRemoteKeys() []string {
	keys := make([]string, 0, len(remoteKeycodes))
	for k := range remoteKeycodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SendKey presses one remote button on the device
func (a *App) SendKey(name string) error {
	_, err := a.sendKey(name)
	return err
}

func (a *App) sendKey(name string) (*bridge.Pending, error) {
	code, ok := remoteKeycodes[name]
	if !ok {
		return nil, fmt.Errorf("unknown remote key %q", name)
	}
	if !a.keyLimiter.Allow() {
		LogDebug("remote").Str("key", name).Msg("Key event dropped")
		return nil, ErrRateLimited
	}
	return a.shell(true, bridge.Key{}, "input", "keyevent", strconv.Itoa(code))
}

// SendText types text on the device. Spaces are sent as %s, which is how
// `input text` spells them.
func (a *App) SendText(text string) error {
	_, err := a.sendText(text)
	return err
}

func (a *App) sendText(text string) (*bridge.Pending, error) {
	if text == "" {
		return nil, nil
	}
	if !a.keyLimiter.Allow() {
		return nil, ErrRateLimited
	}
	return a.shell(true, bridge.Key{}, "input", "text", strings.ReplaceAll(text, " ", "%s"))
}
