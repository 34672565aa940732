package model

import (
	"fmt"
	"strings"
)

// ComboStatus is the combo lamp of a play. Display only.
type ComboStatus string

// Combo lamps.
const (
	ComboNone           ComboStatus = ""
	ComboFullCombo      ComboStatus = "fc"
	ComboFullComboPlus  ComboStatus = "fcp"
	ComboAllPerfect     ComboStatus = "ap"
	ComboAllPerfectPlus ComboStatus = "app"
)

var comboOrder = []ComboStatus{ComboNone, ComboFullCombo, ComboFullComboPlus, ComboAllPerfect, ComboAllPerfectPlus}

// ParseComboStatus validates a combo lamp string.
func ParseComboStatus(s string) (ComboStatus, error) {
	v := ComboStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range comboOrder {
		if c == v {
			return c, nil
		}
	}
	return ComboNone, fmt.Errorf("unknown combo status %q", s)
}

// ComboFromIndex maps the in-game enum (0 none .. 4 AP+).
func ComboFromIndex(i int) (ComboStatus, error) {
	if i < 0 || i >= len(comboOrder) {
		return ComboNone, fmt.Errorf("combo index %d out of range", i)
	}
	return comboOrder[i], nil
}

// SyncStatus is the sync lamp of a play. Display only.
type SyncStatus string

// Sync lamps.
const (
	SyncNone           SyncStatus = ""
	SyncSync           SyncStatus = "sync"
	SyncFullSync       SyncStatus = "fs"
	SyncFullSyncPlus   SyncStatus = "fsp"
	SyncFullSyncDX     SyncStatus = "fsdx"
	SyncFullSyncDXPlus SyncStatus = "fsdxp"
)

var syncOrder = []SyncStatus{SyncNone, SyncSync, SyncFullSync, SyncFullSyncPlus, SyncFullSyncDX, SyncFullSyncDXPlus}

// ParseSyncStatus validates a sync lamp string. The prober spellings
// "fsd"/"fsdp" are accepted as aliases for fsdx/fsdxp.
func ParseSyncStatus(s string) (SyncStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "fsd":
		return SyncFullSyncDX, nil
	case "fsdp":
		return SyncFullSyncDXPlus, nil
	}
	for _, c := range syncOrder {
		if string(c) == v {
			return c, nil
		}
	}
	return SyncNone, fmt.Errorf("unknown sync status %q", s)
}

// SyncFromIndex maps the in-game enum (0 none .. 5 FDX+).
func SyncFromIndex(i int) (SyncStatus, error) {
	if i < 0 || i >= len(syncOrder) {
		return SyncNone, fmt.Errorf("sync index %d out of range", i)
	}
	return syncOrder[i], nil
}
