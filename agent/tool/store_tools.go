package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/inventory"
	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
)

const askForItemMessage = "Please tell me which item you are looking for."

func (h Handlers) resolve(ctx context.Context, tool, location string) (storex.LocationRecord, *contractx.Failure) {
	rec, ok := h.Directory.Get(location)
	if !ok {
		zerolog.Ctx(ctx).Info().Str("tool", tool).Str("store_location", location).Msg("unknown store location")
		fail := contractx.Fail(fmt.Sprintf("Unknown store location: %s. Valid locations are: %s",
			location, h.Directory.NamesSentence()))
		return storex.LocationRecord{}, &fail
	}
	return rec, nil
}

func (h Handlers) inventoryCheck(ctx context.Context, rawItem, location string) any {
	rec, fail := h.resolve(ctx, contractx.ToolInventoryCheck, location)
	if fail != nil {
		return *fail
	}

	item, err := inventory.NormalizeItemName(rawItem)
	if err != nil {
		return contractx.Fail(askForItemMessage)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("tool", contractx.ToolInventoryCheck).
		Str("store_location", rec.Name).
		Str("item_name", item).
		Logger()
	logger.Info().Msg("checking inventory")

	info, err := h.Inventory.Lookup(ctx, item, rec.ID)
	if errors.Is(err, inventory.ErrItemNotFound) {
		return contractx.Fail(fmt.Sprintf("We could not find %s in the catalog for %s.", item, rec.Name))
	}
	if err != nil {
		logger.Error().Err(err).Msg("inventory lookup failed")
		return contractx.Fail(fmt.Sprintf("Inventory is temporarily unavailable for %s. Please try again in a moment.", rec.Name))
	}

	name := info.ItemName
	if name == "" {
		name = item
	}
	return contractx.InventoryResult{
		Success:   true,
		ItemName:  name,
		StoreName: rec.Name,
		StoreID:   rec.ID,
		InStock:   info.InStock,
		Quantity:  info.Quantity,
		Price:     info.PriceText(),
		Aisle:     info.Aisle,
	}
}

func (h Handlers) storeHours(ctx context.Context, location string) any {
	rec, fail := h.resolve(ctx, contractx.ToolGetStoreHours, location)
	if fail != nil {
		return *fail
	}
	return contractx.HoursResult{
		Success:   true,
		StoreName: rec.Name,
		Hours:     rec.Hours,
	}
}

func (h Handlers) storeDepartments(ctx context.Context, location string) any {
	rec, fail := h.resolve(ctx, contractx.ToolGetStoreDepartments, location)
	if fail != nil {
		return *fail
	}
	return contractx.DepartmentsResult{
		Success:     true,
		StoreName:   rec.Name,
		Departments: rec.Departments,
	}
}
