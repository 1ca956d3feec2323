package ingest

import (
	"errors"

	"github.com/mpapenbr/wrc-timing-go/pkg/session"
)

// a season without started event is fine for season ingestion
func isNoEvent(err error) bool {
	return errors.Is(err, session.ErrNoEvent)
}
