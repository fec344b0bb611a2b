// Package notify announces beat table changes to show-control software over
// Open Sound Control.
package notify

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"
)

// OSC addresses sent by OSCNotifier.
const (
	AddressBeat    = "/beatgrid/beat"
	AddressCleared = "/beatgrid/cleared"
	AddressSorted  = "/beatgrid/sorted"
)

// OSCNotifier sends one UDP message per change. Messages are fire and
// forget; a listener that is not running is not an error on the send side.
type OSCNotifier struct {
	client *osc.Client
	target string
}

// NewOSC returns a notifier that sends to host:port.
func NewOSC(host string, port int) *OSCNotifier {
	return &OSCNotifier{
		client: osc.NewClient(host, port),
		target: fmt.Sprintf("%s:%d", host, port),
	}
}

// Target is the host:port messages are sent to.
func (n *OSCNotifier) Target() string { return n.target }

// BeatAppended sends /beatgrid/beat <scene> <index> <time>.
func (n *OSCNotifier) BeatAppended(scene string, index int, value string) error {
	return n.send(AddressBeat, scene, int32(index), value)
}

// ScenesCleared sends /beatgrid/cleared followed by each cleared scene.
func (n *OSCNotifier) ScenesCleared(scenes []string) error {
	args := make([]any, len(scenes))
	for i, s := range scenes {
		args[i] = s
	}
	return n.send(AddressCleared, args...)
}

// TableSorted sends /beatgrid/sorted <scene count>.
func (n *OSCNotifier) TableSorted(scenes int) error {
	return n.send(AddressSorted, int32(scenes))
}

func (n *OSCNotifier) send(address string, args ...any) error {
	msg := osc.NewMessage(address)
	for _, arg := range args {
		msg.Append(arg)
	}
	if err := n.client.Send(msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", address, n.target, err)
	}
	return nil
}
