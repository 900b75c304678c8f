package main

import (
	"database/sql"
	"math/rand"

	"github.com/jonboulle/clockwork"

	"github.com/fantabuilder/fantasta/internal/catalog"
	"github.com/fantabuilder/fantasta/internal/coordinator"
	"github.com/fantabuilder/fantasta/internal/gateway"
	"github.com/fantabuilder/fantasta/internal/ledger"
	"github.com/fantabuilder/fantasta/internal/order"
	"github.com/fantabuilder/fantasta/internal/outbox"
	"github.com/fantabuilder/fantasta/internal/session"
	"github.com/fantabuilder/fantasta/internal/slate"
)

type Services struct {
	Catalog     *catalog.App
	Sessions    *session.App
	Slates      *slate.App
	Ledger      *ledger.App
	Outbox      *outbox.App
	OutboxRepo  *outbox.Repository
	Coordinator *coordinator.App
	Gateway     *gateway.HTTPHandler
}

func setupServices(database *sql.DB, clock clockwork.Clock, rng *rand.Rand) *Services {
	// Repository layer, then app layer, then the coordinator on top.
	catalogRepo := catalog.NewRepository(database)
	catalogApp := catalog.NewApp(catalogRepo)

	sessionRepo := session.NewRepository(database)
	sessionApp := session.NewApp(sessionRepo, clock, rng)

	slateRepo := slate.NewRepository(database)
	slateApp := slate.NewApp(slateRepo, catalogApp, order.NewGenerator(rng), clock)

	ledgerRepo := ledger.NewRepository(database)
	ledgerApp := ledger.NewApp(ledgerRepo, sessionApp, catalogApp, clock)

	outboxRepo := outbox.NewRepository(database)
	outboxApp := outbox.NewApp(outboxRepo, clock)

	coordinatorApp := coordinator.NewApp(sessionApp, slateApp, ledgerApp, catalogApp, outboxApp)

	return &Services{
		Catalog:     catalogApp,
		Sessions:    sessionApp,
		Slates:      slateApp,
		Ledger:      ledgerApp,
		Outbox:      outboxApp,
		OutboxRepo:  outboxRepo,
		Coordinator: coordinatorApp,
		Gateway:     gateway.NewHTTPHandler(coordinatorApp),
	}
}
