package interfaces

import "github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

// -----------------------------------------------------------------------------
// IBroadcaster defining the interface for pushing feed messages to
// external listeners (Server/Push).
// -----------------------------------------------------------------------------

type IBroadcaster interface {

	// Broadcast fans the message out to every currently connected
	// subscriber. Best effort: no acknowledgment, no retry, and a
	// subscriber that is not writable at this instant is skipped.
	Broadcast(msg *models.MFeedMessage)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
