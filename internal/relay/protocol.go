package relay

import "fmt"

// Wire lines exchanged with clients. Each is one message unit: a line on the
// TCP transport, a text frame on the websocket bridge.
const ackMessage = "ACK:MESSAGE"

func formatLogin(id ClientID) string {
	return fmt.Sprintf("LOGIN:%d", id)
}

func formatRelay(msg Message) string {
	return fmt.Sprintf("MESSAGE:%d %s", msg.Sender, msg.Text)
}
