package stratus

import (
	"strconv"
	"strings"
	"time"
)

// Package status codes and their display labels.
const (
	PackageStatusActive   = 0
	PackageStatusArchived = 1

	PackageStatusActiveLabel   = "Active (0)"
	PackageStatusArchivedLabel = "Archived (1)"
)

// Editable package fields, grouped by the coercion applied on submit.
var (
	packageIntegerFields = map[string]bool{
		"hoursEstimatedField":      true,
		"hoursEstimatedOffice":     true,
		"hoursEstimatedPurchasing": true,
		"hoursEstimatedShop":       true,
		"officeDuration":           true,
		"purchasingDuration":       true,
		"shopDuration":             true,
	}

	packageDateFields = map[string]bool{
		"installedDT":       true,
		"officeStartDT":     true,
		"purchasingStartDT": true,
		"requiredDT":        true,
		"startDT":           true,
	}

	packageStringFields = map[string]bool{
		"name":        true,
		"description": true,
		"number":      true,
		"categoryId":  true,
	}
)

// EditablePackageFields lists every field accepted by BuildPackagePatch,
// in display order.
var EditablePackageFields = []string{
	"name", "description", "number", "categoryId",
	"hoursEstimatedField", "hoursEstimatedOffice", "hoursEstimatedPurchasing", "hoursEstimatedShop",
	"officeDuration", "purchasingDuration", "shopDuration",
	"installedDT", "officeStartDT", "purchasingStartDT", "requiredDT", "startDT",
	"status",
}

// PackageFieldValues renders a package's editable fields in display
// form, the snapshot baseline that later edits are diffed against.
func PackageFieldValues(pkg *Package) map[string]string {
	values := map[string]string{
		"name":                     pkg.Name,
		"description":              pkg.Description,
		"number":                   pkg.Number,
		"categoryId":               pkg.CategoryID,
		"hoursEstimatedField":      strconv.Itoa(pkg.HoursEstimatedField),
		"hoursEstimatedOffice":     strconv.Itoa(pkg.HoursEstimatedOffice),
		"hoursEstimatedPurchasing": strconv.Itoa(pkg.HoursEstimatedPurchasing),
		"hoursEstimatedShop":       strconv.Itoa(pkg.HoursEstimatedShop),
		"officeDuration":           strconv.Itoa(pkg.OfficeDuration),
		"purchasingDuration":       strconv.Itoa(pkg.PurchasingDuration),
		"shopDuration":             strconv.Itoa(pkg.ShopDuration),
		"installedDT":              pkg.InstalledDT,
		"officeStartDT":            pkg.OfficeStartDT,
		"purchasingStartDT":        pkg.PurchasingStartDT,
		"requiredDT":               pkg.RequiredDT,
		"startDT":                  pkg.StartDT,
		"status":                   PackageStatusLabel(pkg.Status),
	}

	return values
}

// PackageStatusLabel maps a status code to its display label.
func PackageStatusLabel(status int) string {
	if status == PackageStatusArchived {
		return PackageStatusArchivedLabel
	}

	return PackageStatusActiveLabel
}

// BuildPackagePatch diffs the edited field values against the
// last-synced snapshot and returns the partial property document to
// submit, keyed by package id. Only fields whose value differs from the
// snapshot are included, each coerced per its field policy: integers
// parse as int (empty means 0), dates must be RFC 3339 (empty means
// null), status maps its display label to a code, everything else
// passes through as string or null-if-empty. A malformed value yields a
// field-named *ValidationError; zero differing fields yield
// ErrNoChanges.
func BuildPackagePatch(packageID string, snapshot, edited map[string]string) (map[string]any, error) {
	patch := map[string]any{"id": packageID}
	changed := false

	for field, value := range edited {
		if value == snapshot[field] {
			continue
		}

		coerced, err := coercePackageField(field, value)
		if err != nil {
			return nil, err
		}

		patch[field] = coerced
		changed = true
	}

	if !changed {
		return nil, ErrNoChanges
	}

	return patch, nil
}

func coercePackageField(field, value string) (any, error) {
	switch {
	case field == "status":
		return coercePackageStatus(value)

	case packageIntegerFields[field]:
		if value == "" {
			return 0, nil
		}

		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, &ValidationError{Field: field, Reason: "must be an integer"}
		}

		return n, nil

	case packageDateFields[field]:
		if value == "" {
			return nil, nil
		}

		_, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, &ValidationError{Field: field, Reason: "must be an ISO-8601 date, e.g. 2025-01-02T15:04:05Z"}
		}

		return value, nil

	case packageStringFields[field]:
		if value == "" {
			return nil, nil
		}

		return value, nil

	default:
		return nil, &ValidationError{Field: field, Reason: "unknown package field"}
	}
}

func coercePackageStatus(value string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case strings.ToLower(PackageStatusActiveLabel), "active", "0":
		return PackageStatusActive, nil
	case strings.ToLower(PackageStatusArchivedLabel), "archived", "1":
		return PackageStatusArchived, nil
	default:
		return nil, &ValidationError{Field: "status", Reason: "must be Active (0) or Archived (1)"}
	}
}
