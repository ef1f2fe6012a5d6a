package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	codes "github.com/jhoicas/scanledger/internal/domain/scan"
	"github.com/jhoicas/scanledger/internal/infrastructure/memory"
)

const featuresDir = "../../../features"

type ledgerTestContext struct {
	store    *memory.Store
	stock    *inventory.StockLedgerUseCase
	items    *inventory.ItemUseCase
	scanner  *scan.Service
	err      error
	decision scan.Decision
	scans    int
}

func (c *ledgerTestContext) reset() {
	c.store = memory.NewStore()
	c.stock = inventory.NewStockLedgerUseCase(memory.NewTxRunner(c.store), nil)
	resolver := scan.NewResolver(c.store, codes.DefaultSeparator)
	c.items = inventory.NewItemUseCase(c.store, c.store, resolver, codes.NewNormalizer(""), "", nil)
	c.scanner = scan.NewService(codes.NewNormalizer(""), resolver, nil, time.Minute, nil)
	c.err = nil
	c.decision = scan.Decision{}
	c.scans = 0
}

func itemID(code string) string { return "id-" + code }

func (c *ledgerTestContext) anItemWithQuantity(code string, qty int) error {
	c.store.Seed(&entity.Item{
		ID: itemID(code), Code: code, Name: code,
		Quantity: qty, InitialQuantity: qty, Status: entity.StatusInStock,
	})
	return nil
}

func (c *ledgerTestContext) theItemIsReserved(code string) error {
	_, err := c.stock.ChangeStatus(context.Background(), itemID(code), entity.StatusReserved)
	return err
}

func (c *ledgerTestContext) iCheckOut(qty int, code string) error {
	_, c.err = c.stock.CheckOut(context.Background(), inventory.CheckOutInput{ItemID: itemID(code), Quantity: qty, PerformedBy: "bdd"})
	return nil
}

func (c *ledgerTestContext) iCheckIn(qty int, code string) error {
	_, c.err = c.stock.CheckIn(context.Background(), inventory.CheckInInput{ItemID: itemID(code), Quantity: qty, PerformedBy: "bdd"})
	return nil
}

func (c *ledgerTestContext) iCheckInAsReserved(qty int, code string) error {
	_, c.err = c.stock.CheckIn(context.Background(), inventory.CheckInInput{
		ItemID: itemID(code), Quantity: qty, Target: entity.StatusReserved, PerformedBy: "bdd",
	})
	return nil
}

func (c *ledgerTestContext) iSetStatus(code, status string) error {
	_, c.err = c.stock.ChangeStatus(context.Background(), itemID(code), entity.ItemStatus(status))
	return nil
}

func (c *ledgerTestContext) theOperationSucceeds() error {
	return c.err
}

var failures = map[string]error{
	"insufficient stock": domain.ErrInsufficientStock,
	"quantity too low":   domain.ErrQuantityTooLow,
	"invalid transition": domain.ErrInvalidTransition,
	"not found":          domain.ErrNotFound,
}

func (c *ledgerTestContext) theOperationFailsWith(kind string) error {
	want, ok := failures[kind]
	if !ok {
		return fmt.Errorf("tipo de fallo desconocido %q", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("se esperaba %q, se obtuvo %v", kind, c.err)
	}
	return nil
}

func (c *ledgerTestContext) hasQuantityAndStatus(code string, qty int, status string) error {
	item, err := c.store.GetByID(context.Background(), itemID(code))
	if err != nil {
		return err
	}
	if item.Quantity != qty || string(item.Status) != status {
		return fmt.Errorf("%s: quantity=%d status=%s, se esperaba %d/%s", code, item.Quantity, item.Status, qty, status)
	}
	return nil
}

func (c *ledgerTestContext) hasLedgerEntries(code string, n int) error {
	entries, err := c.store.ListByItem(context.Background(), itemID(code), 0, 0)
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("%s: %d movimientos, se esperaban %d", code, len(entries), n)
	}
	return nil
}

func (c *ledgerTestContext) theLedgerIsConsistent(code string) error {
	r, err := c.items.Verify(context.Background(), itemID(code))
	if err != nil {
		return err
	}
	if !r.Consistent {
		return fmt.Errorf("ledger=%d stock=%d", r.FromLedger, r.Stored)
	}
	return nil
}

func (c *ledgerTestContext) iScanFrom(raw, source string) error {
	c.scans++
	// sesión distinta por escaneo: aquí no interesa la deduplicación de prompts
	session := fmt.Sprintf("bdd-%d", c.scans)
	d, err := c.scanner.Scan(context.Background(), session, raw, scan.Source(source))
	if err != nil {
		return err
	}
	c.decision = d
	return nil
}

func (c *ledgerTestContext) theScanResolvesTo(code string) error {
	if c.decision.Item == nil || c.decision.Item.Code != code {
		return fmt.Errorf("se esperaba el ítem %q, decisión: %+v", code, c.decision)
	}
	return nil
}

func (c *ledgerTestContext) theScanRoutesTo(action string) error {
	if string(c.decision.Action) != action {
		return fmt.Errorf("se esperaba %q, se obtuvo %q", action, c.decision.Action)
	}
	return nil
}

func (c *ledgerTestContext) theScanCarriesTheCode(code string) error {
	if c.decision.Code != code {
		return fmt.Errorf("código %q, se esperaba %q", c.decision.Code, code)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an item "([^"]*)" with quantity (\d+)$`, tc.anItemWithQuantity)
	ctx.Step(`^the item "([^"]*)" is reserved$`, tc.theItemIsReserved)
	ctx.Step(`^I check out (-?\d+) of "([^"]*)"$`, tc.iCheckOut)
	ctx.Step(`^I check in (\d+) of "([^"]*)"$`, tc.iCheckIn)
	ctx.Step(`^I check in (\d+) of "([^"]*)" as reserved$`, tc.iCheckInAsReserved)
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, tc.iSetStatus)
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^"([^"]*)" has quantity (\d+) and status "([^"]*)"$`, tc.hasQuantityAndStatus)
	ctx.Step(`^"([^"]*)" has (\d+) ledger entries$`, tc.hasLedgerEntries)
	ctx.Step(`^the ledger of "([^"]*)" is consistent$`, tc.theLedgerIsConsistent)
	ctx.Step(`^I scan "([^"]*)" from the (camera|wedge|manual)$`, tc.iScanFrom)
	ctx.Step(`^the scan resolves to "([^"]*)"$`, tc.theScanResolvesTo)
	ctx.Step(`^the scan routes to "([^"]*)"$`, tc.theScanRoutesTo)
	ctx.Step(`^the scan carries the code "([^"]*)"$`, tc.theScanCarriesTheCode)
}

func TestFeatures(t *testing.T) {
	if _, err := os.Stat(featuresDir); os.IsNotExist(err) {
		t.Skip("directorio features no encontrado")
	}
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{featuresDir},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("fallaron los escenarios de aceptación")
	}
}
