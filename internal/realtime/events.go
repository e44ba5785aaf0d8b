package realtime

import "encoding/json"

// Event names mirror the notification contract the console subscribes to:
// one created/updated/deleted event per collection kind. Created and
// updated carry the full record; deleted carries the bare identity.
const (
	ArticleCreated = "ArticleCreated"
	ArticleUpdated = "ArticleUpdated"
	ArticleDeleted = "ArticleDeleted"

	ClientCreated = "ClientCreated"
	ClientUpdated = "ClientUpdated"
	ClientDeleted = "ClientDeleted"
)

type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
