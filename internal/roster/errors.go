package roster

import "errors"

var (
	ErrNoDates            = errors.New("at least one date is required")
	ErrInvalidDate        = errors.New("a valid calendar date is required")
	ErrPastDate           = errors.New("cannot edit the roster of a past date")
	ErrEmptySelection     = errors.New("select at least one menu item")
	ErrCatalogUnavailable = errors.New("the menu catalog could not be loaded, saving is disabled")
	ErrSaveInProgress     = errors.New("a save is already in progress")
	ErrSelectionLoading   = errors.New("the roster for the selected date is still loading")
	ErrNotLoaded          = errors.New("the roster screen has not been loaded")
)
