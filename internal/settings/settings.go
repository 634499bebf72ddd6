package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// PluginID is the namespace all filter settings are stored under.
const PluginID = "gifmask"

// Setting keys.
const (
	// KeyBlockInPicker controls whether the GIF picker surface is
	// filtered. Defaults to true.
	KeyBlockInPicker = "blockInPicker"

	// KeyCaseSensitive controls whether blocked words match
	// case-sensitively. Defaults to false.
	KeyCaseSensitive = "caseSensitive"

	// KeyWords holds the blocked word list as a JSON array.
	KeyWords = "words"
)

// View is the materialized settings the engine scans with. A View is a
// plain value; the engine loads one at start and on rescan and passes
// it through the pipeline, so a settings change never affects a scan
// already in flight.
type View struct {
	BlockInPicker bool     `json:"blockInPicker"`
	CaseSensitive bool     `json:"caseSensitive"`
	Words         []string `json:"words"`
}

// DefaultView returns the settings used when nothing was ever stored.
func DefaultView() View {
	return View{BlockInPicker: true}
}

// Load reads the filter settings from store. Missing keys fall back to
// their defaults without touching the store. On a store or decode
// error the returned View is still usable: it carries the defaults
// merged with every value read before the failure.
func Load(ctx context.Context, store Store) (View, error) {
	view := DefaultView()
	if store == nil {
		return view, nil
	}

	if raw, ok, err := store.Get(ctx, PluginID, KeyBlockInPicker); err != nil {
		return view, fmt.Errorf("failed to load %s: %w", KeyBlockInPicker, err)
	} else if ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return view, fmt.Errorf("failed to decode %s value %q: %w", KeyBlockInPicker, raw, err)
		}
		view.BlockInPicker = v
	}

	if raw, ok, err := store.Get(ctx, PluginID, KeyCaseSensitive); err != nil {
		return view, fmt.Errorf("failed to load %s: %w", KeyCaseSensitive, err)
	} else if ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return view, fmt.Errorf("failed to decode %s value %q: %w", KeyCaseSensitive, raw, err)
		}
		view.CaseSensitive = v
	}

	if raw, ok, err := store.Get(ctx, PluginID, KeyWords); err != nil {
		return view, fmt.Errorf("failed to load %s: %w", KeyWords, err)
	} else if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &view.Words); err != nil {
			return view, fmt.Errorf("failed to decode %s value %q: %w", KeyWords, raw, err)
		}
	}

	return view, nil
}

// Save writes all settings of view to store.
func Save(ctx context.Context, store Store, view View) error {
	if err := store.Set(ctx, PluginID, KeyBlockInPicker, strconv.FormatBool(view.BlockInPicker)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyBlockInPicker, err)
	}
	if err := store.Set(ctx, PluginID, KeyCaseSensitive, strconv.FormatBool(view.CaseSensitive)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyCaseSensitive, err)
	}
	words, err := json.Marshal(view.Words)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyWords, err)
	}
	if err := store.Set(ctx, PluginID, KeyWords, string(words)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyWords, err)
	}
	return nil
}
