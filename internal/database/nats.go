package database

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// ConnectNATS dials the notification broker. An empty URL is not an error:
// the notification sink degrades to log-only delivery without a broker.
func ConnectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url, nats.Name("polyratings-api"))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	return conn, nil
}
