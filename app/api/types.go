package api

import (
	"context"

	"newsbrief/app/database"
)

type Handler struct {
	itemRepo database.ItemRepository

	// Injected pipeline triggers so the API package stays decoupled from
	// the pipeline wiring.
	runCycle  func(ctx context.Context) error
	runDigest func(ctx context.Context, days int) error

	version string
}
